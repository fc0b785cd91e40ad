// Package csvimport lee planillas CSV exportadas por Excel/LibreOffice para la importación de lotes.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// MaxSize tamaño máximo aceptado (5 MB).
const MaxSize = 5 << 20

var (
	ErrEmpty    = errors.New("csv vacío o sin encabezado")
	ErrTooLarge = errors.New("csv excede el tamaño máximo")
)

// Table encabezados en el orden del archivo y una fila por registro (encabezado -> valor).
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Parse detecta BOM, codificación (UTF-8 o Windows-1252) y separador (';' o ',').
// Las filas totalmente vacías se descartan.
func Parse(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	if len(raw) > MaxSize {
		return nil, ErrTooLarge
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("decodificar Windows-1252: %w", err)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmpty
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv inválido: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	headers := normalizeHeaders(records[0])
	t := &Table{Headers: headers}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			if i < len(rec) {
				v := strings.TrimSpace(rec[i])
				row[h] = v
				if v != "" {
					empty = false
				}
			}
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

// detectDelimiter compara ';' y ',' en la primera línea; empate favorece ','.
func detectDelimiter(raw []byte) rune {
	first := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		first = raw[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// normalizeHeaders recorta espacios, nombra columnas vacías y desambigua duplicados.
func normalizeHeaders(in []string) []string {
	out := make([]string, len(in))
	seen := make(map[string]int, len(in))
	for i, h := range in {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("coluna_%d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}
