package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest alta o edición de un lote. Los nombres JSON son los del documento guardado.
type ProductRequest struct {
	Nome           string          `json:"nome" validate:"required,max=200"`
	Categoria      string          `json:"categoria" validate:"required,oneof=Medicamentos Insumos Comida"`
	TipoQuantidade string          `json:"tipoQuantidade" validate:"omitempty,oneof=unitario pacotes"`
	Quantidade     int64           `json:"quantidade" validate:"min=0"`
	Valor          decimal.Decimal `json:"valor" validate:"min=0"`
	Validade       string          `json:"validade"` // YYYY-MM-DD, DD/MM/YYYY o vacío
	Fornecedor     string          `json:"fornecedor" validate:"max=200"`
	Lote           string          `json:"lote" validate:"max=100"`
}

// ProductResponse salida de un lote.
type ProductResponse struct {
	ID             string          `json:"id"`
	Nome           string          `json:"nome"`
	Categoria      string          `json:"categoria"`
	TipoQuantidade string          `json:"tipoQuantidade"`
	Quantidade     int64           `json:"quantidade"`
	Valor          decimal.Decimal `json:"valor"`
	ValorTotal     decimal.Decimal `json:"valorTotal"`
	Validade       *string         `json:"validade"`
	Fornecedor     string          `json:"fornecedor,omitempty"`
	Lote           string          `json:"lote,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	TransferidoEm  *time.Time      `json:"transferidoEm,omitempty"`
}

// ProductListResponse listado de un local.
type ProductListResponse struct {
	Location string            `json:"location"`
	Items    []ProductResponse `json:"items"`
	Total    int               `json:"total"`
}

// ProductMutationResponse lote afectado. LogWarning se llena si el registro de actividad falló.
type ProductMutationResponse struct {
	Product    *ProductResponse `json:"product,omitempty"`
	LogWarning string           `json:"log_warning,omitempty"`
}

// CategoryTotalResponse datos del gráfico por categoría.
type CategoryTotalResponse struct {
	Categoria  string `json:"categoria"`
	Quantidade int64  `json:"quantidade"`
}

// SummaryResponse resumen de un local.
type SummaryResponse struct {
	Location     string                  `json:"location"`
	Name         string                  `json:"name"`
	TotalBatches int                     `json:"total_batches"`
	TotalItems   int64                   `json:"total_items"`
	TotalValue   decimal.Decimal         `json:"total_value"`
	ByCategory   []CategoryTotalResponse `json:"by_category"`
	LowStock     []ProductResponse       `json:"low_stock"`
	Threshold    int64                   `json:"low_stock_threshold"`
}

// LocationResponse un local del catálogo.
type LocationResponse struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
}
