package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// WriteCSV exporta el reporte en una sola tabla: una sección por ranking más la valorización por local.
// Separador ';' para que Excel en pt-BR lo abra sin asistente.
func WriteCSV(w io.Writer, r *entity.Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	rows := [][]string{
		{"secao", "posicao", "item", "quantidade", "valor"},
	}
	sections := []struct {
		name  string
		items []entity.RankedItem
	}{
		{"mais_entradas", r.Entries.Most},
		{"menos_entradas", r.Entries.Least},
		{"mais_saidas", r.Exits.Most},
		{"menos_saidas", r.Exits.Least},
	}
	for _, s := range sections {
		for i, it := range s.items {
			rows = append(rows, []string{
				s.name, strconv.Itoa(i + 1), it.Item, strconv.FormatInt(it.Quantity, 10), it.UnitPrice.StringFixed(2),
			})
		}
	}
	for _, lv := range r.ByLocation {
		rows = append(rows, []string{
			"local", "", lv.Location, strconv.FormatInt(lv.Quantity, 10), lv.TotalValue.StringFixed(2),
		})
	}
	rows = append(rows,
		[]string{"total", "", "produtos", strconv.Itoa(r.TotalProducts), r.TotalValue.StringFixed(2)},
		[]string{"gerado_em", "", r.DataGeracao, "", ""},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("escribir csv: %w", err)
	}
	return nil
}
