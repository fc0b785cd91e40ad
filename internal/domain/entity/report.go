package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankedItem total agregado de un ítem en la bitácora.
type RankedItem struct {
	Item      string          `json:"item"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Ranking top-N descendente (Most) y ascendente (Least).
type Ranking struct {
	Most  []RankedItem `json:"most"`
	Least []RankedItem `json:"least"`
}

// LocationValue valorización de un local.
type LocationValue struct {
	Location   string          `json:"location"`
	Products   int             `json:"products"`
	Quantity   int64           `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Report instantánea del reporte general. Se serializa tal cual en la caché.
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	DataGeracao   string          `json:"data_geracao"`
	TotalProducts int             `json:"total_products"`
	Entries       Ranking         `json:"entries"`
	Exits         Ranking         `json:"exits"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ByLocation    []LocationValue `json:"by_location"`
}
