package dto

import "time"

// ActivityResponse un registro de la bitácora con su mensaje legible.
type ActivityResponse struct {
	ID            string         `json:"id"`
	UsuarioEmail  string         `json:"usuarioEmail"`
	TipoOperacao  string         `json:"tipoOperacao"`
	Item          string         `json:"item"`
	Origem        string         `json:"origem"`
	Destino       *string        `json:"destino"`
	Quantidade    any            `json:"quantidade"`
	Detalhes      map[string]any `json:"detalhes,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	DataFormatada string         `json:"dataFormatada"`
	Mensagem      string         `json:"mensagem"`
}

// ActivityListResponse listado de registros.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}
