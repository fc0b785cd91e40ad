package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/application/report"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

func TestWriteCSV(t *testing.T) {
	r := &entity.Report{
		DataGeracao:   "01/06/2025 15:00:00",
		TotalProducts: 2,
		TotalValue:    decimal.RequireFromString("250.3"),
		Exits: entity.Ranking{
			Most: []entity.RankedItem{{Item: "Luva; P", Quantity: 4, UnitPrice: decimal.RequireFromString("0.1")}},
		},
		ByLocation: []entity.LocationValue{{Location: "vet", Quantity: 3, TotalValue: decimal.RequireFromString("0.3")}},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, r))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "secao;posicao;item;quantidade;valor", lines[0])
	assert.Equal(t, `mais_saidas;1;"Luva; P";4;0.10`, lines[1])
	assert.Equal(t, "local;;vet;3;0.30", lines[2])
	assert.Equal(t, "total;;produtos;2;250.30", lines[3])
	assert.Equal(t, "gerado_em;;01/06/2025 15:00:00;;", lines[4])
}
