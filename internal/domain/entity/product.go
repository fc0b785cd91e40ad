package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-vet/internal/domain"
)

// Categoria de producto (conjunto cerrado).
type Categoria string

const (
	CategoriaMedicamentos Categoria = "Medicamentos"
	CategoriaInsumos      Categoria = "Insumos"
	CategoriaComida       Categoria = "Comida"
)

// Categorias en el orden en que se muestran en el gráfico de resumen.
var Categorias = []Categoria{CategoriaMedicamentos, CategoriaInsumos, CategoriaComida}

// ParseCategoria acepta el nombre sin distinguir mayúsculas.
func ParseCategoria(s string) (Categoria, error) {
	for _, c := range Categorias {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", domain.Invalid(FieldCategoria, "debe ser Medicamentos, Insumos o Comida")
}

// TipoQuantidade unidad de conteo del lote.
type TipoQuantidade string

const (
	TipoUnitario TipoQuantidade = "unitario"
	TipoPacotes  TipoQuantidade = "pacotes"
)

// ParseTipoQuantidade acepta también las formas singulares.
func ParseTipoQuantidade(s string) (TipoQuantidade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unitario", "unitário", "unidade", "unidades":
		return TipoUnitario, nil
	case "pacotes", "pacote":
		return TipoPacotes, nil
	}
	return "", domain.Invalid(FieldTipoQuantidade, "debe ser unitario o pacotes")
}

// Nombres de campo tal como se guardan en el almacén.
const (
	FieldNome           = "nome"
	FieldCategoria      = "categoria"
	FieldTipoQuantidade = "tipoQuantidade"
	FieldQuantidade     = "quantidade"
	FieldValor          = "valor"
	FieldValidade       = "validade"
	FieldFornecedor     = "fornecedor"
	FieldLote           = "lote"
	FieldUserID         = "userId"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
	FieldTransferidoEm  = "transferidoEm"
)

// Product un lote de producto dentro de la colección de un local.
// Validade y TransferredAt son opcionales; Fornecedor y Lote vacíos equivalen a ausentes.
type Product struct {
	ID             string
	Nome           string
	Categoria      Categoria
	TipoQuantidade TipoQuantidade
	Quantidade     int64
	Valor          decimal.Decimal
	Validade       *time.Time
	Fornecedor     string
	Lote           string
	UserID         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	TransferredAt  *time.Time
}

// Validate comprueba las invariantes del lote.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Nome) == "" {
		return domain.Invalid(FieldNome, "obligatorio")
	}
	if _, err := ParseCategoria(string(p.Categoria)); err != nil {
		return err
	}
	if _, err := ParseTipoQuantidade(string(p.TipoQuantidade)); err != nil {
		return err
	}
	if p.Quantidade < 0 {
		return domain.Invalid(FieldQuantidade, "no puede ser negativa")
	}
	if p.Valor.IsNegative() {
		return domain.Invalid(FieldValor, "no puede ser negativo")
	}
	if p.Validade != nil {
		if y := p.Validade.UTC().Year(); y < 1 || y > 9999 {
			return domain.Invalid(FieldValidade, "año fuera de rango")
		}
	}
	return nil
}

// TotalValue valor * quantidade.
func (p *Product) TotalValue() decimal.Decimal {
	return p.Valor.Mul(decimal.NewFromInt(p.Quantidade))
}

// Clone copia profunda (los punteros de fecha no se comparten).
func (p *Product) Clone() *Product {
	c := *p
	if p.Validade != nil {
		v := *p.Validade
		c.Validade = &v
	}
	if p.TransferredAt != nil {
		t := *p.TransferredAt
		c.TransferredAt = &t
	}
	return &c
}

// Fields produce la bolsa de campos persistida. ID no forma parte de los campos.
func (p *Product) Fields() map[string]any {
	f := map[string]any{
		FieldNome:           p.Nome,
		FieldCategoria:      string(p.Categoria),
		FieldTipoQuantidade: string(p.TipoQuantidade),
		FieldQuantidade:     p.Quantidade,
		FieldValor:          p.Valor,
		FieldUserID:         p.UserID,
		FieldCreatedAt:      p.CreatedAt,
		FieldUpdatedAt:      p.UpdatedAt,
	}
	if p.Validade != nil {
		f[FieldValidade] = *p.Validade
	}
	if p.Fornecedor != "" {
		f[FieldFornecedor] = p.Fornecedor
	}
	if p.Lote != "" {
		f[FieldLote] = p.Lote
	}
	if p.TransferredAt != nil {
		f[FieldTransferidoEm] = *p.TransferredAt
	}
	return f
}

// ProductFromFields convierte un documento sin tipo en Product.
// Falla con domain.ErrValidation si algún campo no tiene la forma esperada.
func ProductFromFields(id string, fields map[string]any) (*Product, error) {
	nome, err := stringField(fields, FieldNome)
	if err != nil {
		return nil, err
	}
	catRaw, err := stringField(fields, FieldCategoria)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCategoria(catRaw)
	if err != nil {
		return nil, err
	}
	tipoRaw, err := stringField(fields, FieldTipoQuantidade)
	if err != nil {
		return nil, err
	}
	tipo := TipoUnitario
	if tipoRaw != "" {
		if tipo, err = ParseTipoQuantidade(tipoRaw); err != nil {
			return nil, err
		}
	}
	qty, err := int64Field(fields, FieldQuantidade)
	if err != nil {
		return nil, err
	}
	valor, err := decimalField(fields, FieldValor)
	if err != nil {
		return nil, err
	}
	validade, err := timeField(fields, FieldValidade)
	if err != nil {
		return nil, err
	}
	fornecedor, err := stringField(fields, FieldFornecedor)
	if err != nil {
		return nil, err
	}
	lote, err := stringField(fields, FieldLote)
	if err != nil {
		return nil, err
	}
	userID, err := stringField(fields, FieldUserID)
	if err != nil {
		return nil, err
	}
	createdAt, err := timeField(fields, FieldCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := timeField(fields, FieldUpdatedAt)
	if err != nil {
		return nil, err
	}
	transferred, err := timeField(fields, FieldTransferidoEm)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:             id,
		Nome:           nome,
		Categoria:      cat,
		TipoQuantidade: tipo,
		Quantidade:     qty,
		Valor:          valor,
		Validade:       validade,
		Fornecedor:     fornecedor,
		Lote:           lote,
		UserID:         userID,
		TransferredAt:  transferred,
	}
	if createdAt != nil {
		p.CreatedAt = *createdAt
	}
	if updatedAt != nil {
		p.UpdatedAt = *updatedAt
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
