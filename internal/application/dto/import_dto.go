package dto

// ImportRowResponse resultado de una fila del CSV. Line cuenta el encabezado como línea 1.
type ImportRowResponse struct {
	Line    int              `json:"line"`
	Product *ProductResponse `json:"product,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ImportPreviewResponse encabezados, mapeo sugerido y primeras filas convertidas.
type ImportPreviewResponse struct {
	Headers   []string            `json:"headers"`
	Mapping   map[string]string   `json:"mapping"`
	Fields    []string            `json:"fields"`
	TotalRows int                 `json:"total_rows"`
	Rows      []ImportRowResponse `json:"rows"`
}

// ImportResponse resumen de una importación.
type ImportResponse struct {
	Location   string              `json:"location"`
	Total      int                 `json:"total"`
	Imported   int                 `json:"imported"`
	Failed     []ImportRowResponse `json:"failed"`
	Error      string              `json:"error,omitempty"`
	LogWarning string              `json:"log_warning,omitempty"`
}
