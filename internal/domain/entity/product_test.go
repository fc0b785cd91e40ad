package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain"
)

func TestProductFromFields_DesdeJSON(t *testing.T) {
	raw := `{
		"nome": "Dipirona 500mg",
		"categoria": "medicamentos",
		"tipoQuantidade": "pacotes",
		"quantidade": 12,
		"valor": "7.90",
		"validade": "2026-03-15T00:00:00.000000000Z",
		"fornecedor": "VetPharma",
		"createdAt": "2025-01-02T10:00:00Z"
	}`
	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))

	p, err := ProductFromFields("id-1", fields)
	require.NoError(t, err)

	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, CategoriaMedicamentos, p.Categoria)
	assert.Equal(t, TipoPacotes, p.TipoQuantidade)
	assert.Equal(t, int64(12), p.Quantidade)
	assert.True(t, p.Valor.Equal(decimal.RequireFromString("7.9")))
	require.NotNil(t, p.Validade)
	assert.Equal(t, time.March, p.Validade.Month())
	assert.Equal(t, "VetPharma", p.Fornecedor)
	assert.Nil(t, p.TransferredAt)
}

func TestProductFromFields_RoundTripFields(t *testing.T) {
	v := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	orig := &Product{
		Nome: "Seringa 10ml", Categoria: CategoriaInsumos, TipoQuantidade: TipoUnitario,
		Quantidade: 100, Valor: decimal.RequireFromString("2.50"), Validade: &v,
	}

	back, err := ProductFromFields("x", orig.Fields())
	require.NoError(t, err)
	assert.True(t, sameValues(orig, back))
}

// sameValues compara los campos de negocio de dos lotes.
func sameValues(a, b *Product) bool {
	return a.Nome == b.Nome && a.Categoria == b.Categoria && a.TipoQuantidade == b.TipoQuantidade &&
		a.Quantidade == b.Quantidade && a.Valor.Equal(b.Valor) && a.Fornecedor == b.Fornecedor &&
		((a.Validade == nil && b.Validade == nil) || (a.Validade != nil && b.Validade != nil && a.Validade.Equal(*b.Validade)))
}

func TestProductFromFields_Rechaza(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"nome": "Luva", "categoria": "Insumos", "quantidade": 3}
	}
	cases := map[string]func(f map[string]any){
		"sin nome":            func(f map[string]any) { delete(f, "nome") },
		"nome no texto":       func(f map[string]any) { f["nome"] = 42 },
		"categoria inválida":  func(f map[string]any) { f["categoria"] = "Brinquedos" },
		"quantidade faltante": func(f map[string]any) { delete(f, "quantidade") },
		"quantidade decimal":  func(f map[string]any) { f["quantidade"] = 2.5 },
		"quantidade negativa": func(f map[string]any) { f["quantidade"] = -1 },
		"valor no numérico":   func(f map[string]any) { f["valor"] = "caro" },
		"validade rara":       func(f map[string]any) { f["validade"] = "ontem" },
		"tipo inválido":       func(f map[string]any) { f["tipoQuantidade"] = "caixas" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := base()
			mutate(f)
			_, err := ProductFromFields("x", f)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	p, err := ProductFromFields("x", base())
	require.NoError(t, err)
	assert.Equal(t, TipoUnitario, p.TipoQuantidade, "tipo ausente se asume unitario")
}

func TestValidate_ValidadeFueraDeRango(t *testing.T) {
	p := &Product{Nome: "Seringa", Categoria: CategoriaInsumos, TipoQuantidade: TipoUnitario, Quantidade: 1}

	lejana := time.Date(29279, 1, 23, 0, 0, 0, 0, time.UTC)
	p.Validade = &lejana
	assert.ErrorIs(t, p.Validate(), domain.ErrValidation)

	cero := time.Date(0, 12, 31, 0, 0, 0, 0, time.UTC)
	p.Validade = &cero
	assert.ErrorIs(t, p.Validate(), domain.ErrValidation)

	limite := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	p.Validade = &limite
	require.NoError(t, p.Validate())
	back, err := ProductFromFields("x", p.Fields())
	require.NoError(t, err)
	assert.True(t, back.Validade.Equal(limite))
}

func TestToDecimal_ComaDecimal(t *testing.T) {
	d, err := ToDecimal("1.234,56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.String())

	d, err = ToDecimal("2,5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())
}

func TestActivityEntry_FieldsNoPisaFijos(t *testing.T) {
	dest := "vet"
	e := &ActivityEntry{
		UsuarioEmail: "ana@clinica.vet", TipoOperacao: OpTransferencia, Item: "Luva",
		Origem: "principal", Destino: &dest, Quantidade: int64(4),
		Detalhes: map[string]any{"categoria": "Insumos", "item": "pisado"},
	}
	f := e.Fields()
	assert.Equal(t, "Luva", f["item"])
	assert.Equal(t, "Insumos", f["categoria"])
	assert.Equal(t, "vet", f["destino"])

	back, err := ActivityEntryFromFields("r1", f)
	require.NoError(t, err)
	assert.Equal(t, OpTransferencia, back.TipoOperacao)
	require.NotNil(t, back.Destino)
	assert.Equal(t, "vet", *back.Destino)
	assert.Equal(t, "Insumos", back.Detalhes["categoria"])
}
