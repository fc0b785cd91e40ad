package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// PreviewRows filas que devuelve Preview.
const PreviewRows = 10

// Mapping campo del lote -> encabezado del CSV.
type Mapping map[string]string

// Campos que se pueden mapear desde un CSV.
var ImportFields = []string{
	entity.FieldNome, entity.FieldQuantidade, entity.FieldCategoria, entity.FieldValor,
	entity.FieldValidade, entity.FieldFornecedor, entity.FieldLote, entity.FieldTipoQuantidade,
}

// reglas de auto-mapeo en orden de prioridad; tipo va antes que quantidade
// para que "Tipo de quantidade" no se tome como cantidad.
var mappingRules = []struct {
	field string
	keys  []string
}{
	{entity.FieldNome, []string{"nome", "produto"}},
	{entity.FieldTipoQuantidade, []string{"tipo", "unidade"}},
	{entity.FieldQuantidade, []string{"qtd", "quant"}},
	{entity.FieldCategoria, []string{"categ"}},
	{entity.FieldValor, []string{"valor", "preco"}},
	{entity.FieldValidade, []string{"valid", "venc"}},
	{entity.FieldFornecedor, []string{"fornec"}},
	{entity.FieldLote, []string{"lote"}},
}

// dd/MM antes que MM/dd: una fecha ambigua se lee en formato brasileño.
var dateLayouts = []string{
	"2/1/2006", "1/2/2006", "2006-1-2", "2-1-2006", "1-2-2006", "2.1.2006", "1.2.2006",
}

var excelEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxExcelSerial es el 31/12/9999, la última fecha que Excel representa.
const maxExcelSerial = 2958465

// RowResult conversión de una fila. Line es la línea del archivo (el encabezado es la 1).
type RowResult struct {
	Line    int
	Product *entity.Product
	Err     error
}

// ImportResult resumen de una importación.
type ImportResult struct {
	Location string
	Total    int
	Imported []*entity.Product
	Failed   []RowResult
	Log      activity.AppendOutcome
}

// ImportUseCase importación masiva de lotes desde filas ya parseadas.
type ImportUseCase struct {
	products *ProductUseCase
	metrics  Recorder
	logger   *logger.Logger
}

// NewImportUseCase reutiliza el camino insertar + registrar de ProductUseCase.
func NewImportUseCase(products *ProductUseCase, metrics Recorder, lg *logger.Logger) *ImportUseCase {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if lg == nil {
		lg = logger.Nop()
	}
	return &ImportUseCase{products: products, metrics: metrics, logger: lg}
}

// SuggestMapping asocia encabezados a campos sin distinguir mayúsculas ni acentos.
// Cada campo toma el primer encabezado que lo satisface.
func SuggestMapping(headers []string) Mapping {
	m := Mapping{}
	for _, h := range headers {
		key := foldHeader(h)
		for _, r := range mappingRules {
			if !containsAny(key, r.keys) {
				continue
			}
			if _, taken := m[r.field]; !taken {
				m[r.field] = h
			}
			break
		}
	}
	return m
}

func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ConvertRow arma un lote con los valores mapeados. Cantidad y valor ilegibles quedan en 0,
// categoría y tipo ausentes toman Insumos y unitario, y una fecha ilegible queda ausente.
func ConvertRow(row map[string]string, m Mapping) (*entity.Product, error) {
	get := func(field string) string {
		h, ok := m[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row[h])
	}

	cat := entity.CategoriaInsumos
	if raw := get(entity.FieldCategoria); raw != "" {
		c, err := entity.ParseCategoria(raw)
		if err != nil {
			return nil, err
		}
		cat = c
	}
	tipo := entity.TipoUnitario
	if raw := get(entity.FieldTipoQuantidade); raw != "" {
		t, err := entity.ParseTipoQuantidade(raw)
		if err != nil {
			return nil, err
		}
		tipo = t
	}

	p := &entity.Product{
		Nome:           get(entity.FieldNome),
		Categoria:      cat,
		TipoQuantidade: tipo,
		Quantidade:     parseQuantity(get(entity.FieldQuantidade)),
		Valor:          parsePrice(get(entity.FieldValor)),
		Validade:       ParseDate(get(entity.FieldValidade)),
		Fornecedor:     get(entity.FieldFornecedor),
		Lote:           get(entity.FieldLote),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseQuantity(s string) int64 {
	d, err := entity.ToDecimal(s)
	if err != nil {
		return 0
	}
	return d.IntPart()
}

func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	d, err := entity.ToDecimal(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate prueba los formatos de fecha habituales y, si nada coincide, un número de serie de Excel.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= maxExcelSerial {
		t := excelEpoch.AddDate(0, 0, n-2)
		return &t
	}
	return nil
}

// Preview convierte las primeras filas sin escribir nada.
func (uc *ImportUseCase) Preview(rows []map[string]string, m Mapping) []RowResult {
	n := len(rows)
	if n > PreviewRows {
		n = PreviewRows
	}
	out := make([]RowResult, 0, n)
	for i := 0; i < n; i++ {
		p, err := ConvertRow(rows[i], m)
		out = append(out, RowResult{Line: i + 2, Product: p, Err: err})
	}
	return out
}

// Import inserta cada fila válida como un alta manual (con su registro adicao) y cierra con un
// registro adicao_leva. Las filas inválidas se informan; un fallo del almacén corta la importación
// y devuelve lo importado hasta ese momento junto con el error.
func (uc *ImportUseCase) Import(ctx context.Context, actor entity.Actor, location, source string, rows []map[string]string, m Mapping) (*ImportResult, error) {
	loc, err := uc.products.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	if m[entity.FieldNome] == "" {
		return nil, domain.Invalid("mapping", "falta la columna de nome")
	}

	res := &ImportResult{Location: string(loc.Key), Total: len(rows)}
	var runErr error
	for i, row := range rows {
		p, err := ConvertRow(row, m)
		if err != nil {
			res.Failed = append(res.Failed, RowResult{Line: i + 2, Err: err})
			continue
		}
		now := uc.products.now().UTC()
		p.UserID, p.CreatedAt, p.UpdatedAt = actor.UserID, now, now
		out, err := uc.products.insert(ctx, actor, loc, p)
		if err != nil {
			runErr = err
			break
		}
		res.Imported = append(res.Imported, out.Product)
	}
	uc.metrics.ImportRows(len(res.Imported), len(res.Failed))

	if len(res.Imported) > 0 {
		if source == "" {
			source = "importação CSV"
		}
		res.Log = uc.products.log.Append(ctx, activity.Entry{
			Actor:      actor,
			Kind:       entity.OpAdicaoLeva,
			Item:       source,
			Origem:     string(loc.Key),
			Quantidade: int64(len(res.Imported)),
			Detalhes: map[string]any{
				"linhasComErro": len(res.Failed),
			},
		})
	}

	ev := uc.logger.WithContext(ctx).Info()
	if runErr != nil {
		ev = uc.logger.WithContext(ctx).Error().Err(runErr)
	}
	ev.Str("local", string(loc.Key)).
		Int("importados", len(res.Imported)).
		Int("con_error", len(res.Failed)).
		Msg("importación csv")

	if runErr != nil {
		return res, fmt.Errorf("importación interrumpida tras %d filas: %w", len(res.Imported), runErr)
	}
	return res, nil
}

// RowErrorMessage texto de error para la respuesta; oculta errores internos.
func RowErrorMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "fila inválida"
}
