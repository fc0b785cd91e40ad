package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PuntoYComaConBOM(t *testing.T) {
	in := "\xef\xbb\xbfProduto;Qtd;Preço\nSeringa 10ml;100;2,50\n;;\nLuva P; 20 ;0,35\n"

	table, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Produto", "Qtd", "Preço"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Seringa 10ml", table.Rows[0]["Produto"])
	assert.Equal(t, "2,50", table.Rows[0]["Preço"])
	assert.Equal(t, "20", table.Rows[1]["Qtd"])
}

func TestParse_ComaConComillas(t *testing.T) {
	in := "nome,valor,fornecedor\n\"Ração, 10kg\",89.9,PetFood\n"

	table, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Ração, 10kg", table.Rows[0]["nome"])
	assert.Equal(t, "89.9", table.Rows[0]["valor"])
}

func TestParse_Windows1252(t *testing.T) {
	// "Preço" y "Ração" codificados en Windows-1252.
	in := "Produto;Pre\xe7o\nRa\xe7\xe3o;10\n"

	table, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Produto", "Preço"}, table.Headers)
	assert.Equal(t, "Ração", table.Rows[0]["Produto"])
}

func TestParse_EncabezadosVaciosYDuplicados(t *testing.T) {
	in := "nome,,nome\na,b,c\nsolo\n"

	table, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"nome", "coluna_2", "nome_2"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "c", table.Rows[0]["nome_2"])
	assert.Equal(t, "solo", table.Rows[1]["nome"])
	_, ok := table.Rows[1]["nome_2"]
	assert.False(t, ok, "filas cortas no inventan columnas")
}

func TestParse_Vacio(t *testing.T) {
	_, err := Parse(strings.NewReader("  \n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse(strings.NewReader(strings.Repeat("a", MaxSize+10)))
	assert.ErrorIs(t, err, ErrTooLarge)
}
