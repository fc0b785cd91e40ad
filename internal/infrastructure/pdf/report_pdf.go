// Package pdf genera el reporte general en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Relatório Geral de Estoque  │  Data de geração      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMO: total de produtos | custo total                     │
//	│  TABLA: Local | Lotes | Quantidade | Valor                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RANKINGS: + entradas / - entradas / + saídas / - saídas     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Namer traduce la clave del local a su nombre.
type Namer interface {
	DisplayName(key string) string
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ReportGenerator arma el PDF del reporte general con Maroto v2.
type ReportGenerator struct {
	names Namer
}

// NewReportGenerator construye el generador.
func NewReportGenerator(names Namer) *ReportGenerator { return &ReportGenerator{names: names} }

// GenerateReportPDF genera el PDF y devuelve sus bytes.
func (g *ReportGenerator) GenerateReportPDF(_ context.Context, r *entity.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Relatório Geral de Estoque", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(r))
	m.AddRows(locationHeaderRow())
	for _, lv := range r.ByLocation {
		m.AddRows(locationRow(g.displayName(lv.Location), lv))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	sections := []struct {
		title string
		items []entity.RankedItem
	}{
		{"Itens com mais entradas", r.Entries.Most},
		{"Itens com menos entradas", r.Entries.Least},
		{"Itens com mais saídas", r.Exits.Most},
		{"Itens com menos saídas", r.Exits.Least},
	}
	for _, s := range sections {
		m.AddRows(rankingRows(s.title, s.items)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReportGenerator) displayName(key string) string {
	if g.names == nil {
		return key
	}
	return g.names.DisplayName(key)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r *entity.Report) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Relatório Geral de Estoque", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Gerado em", props.Text{Size: 8, Align: align.Right, Top: 1, Color: colorGray}),
			text.New(r.DataGeracao, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 6}),
		),
	)
}

func summaryRow(r *entity.Report) core.Row {
	return row.New(14).Add(
		col.New(6).Add(
			text.New("TOTAL DE PRODUTOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
			text.New(strconv.Itoa(r.TotalProducts), props.Text{Style: fontstyle.Bold, Size: 12, Top: 7}),
		),
		col.New(6).Add(
			text.New("CUSTO TOTAL DO ESTOQUE", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 2}),
			text.New(FormatBRL(r.TotalValue), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
		),
	)
}

func locationHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Local", 5, align.Left),
		h("Lotes", 2, align.Center),
		h("Quantidade", 2, align.Center),
		h("Valor", 3, align.Right),
	)
}

func locationRow(name string, lv entity.LocationValue) core.Row {
	return row.New(6).Add(
		col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(strconv.Itoa(lv.Products), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(ptBR.Sprintf("%d", lv.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(FormatBRL(lv.TotalValue), props.Text{Size: 8, Align: align.Right, Top: 1})),
	)
}

func rankingRows(title string, items []entity.RankedItem) []core.Row {
	rows := []core.Row{
		row.New(9).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 3,
		}))),
	}
	if len(items) == 0 {
		return append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sem registros.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	for i, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1)+".", props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New(it.Item, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(ptBR.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(FormatBRL(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Color: colorGray})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// FormatBRL formatea en reales con separadores pt-BR. Ej: 1234.5 → "R$ 1.234,50".
func FormatBRL(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "R$ " + ptBR.Sprintf("%.2f", f)
}
