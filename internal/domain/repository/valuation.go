package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockValuation totales de stock de una colección de lotes.
type StockValuation struct {
	Batches    int
	Quantity   int64
	TotalValue decimal.Decimal
}

// StockValuer lo implementan los almacenes que valorizan una colección sin devolver los documentos.
// Los documentos que no tienen forma de lote no cuentan.
type StockValuer interface {
	Valuation(ctx context.Context, collection string) (StockValuation, error)
}
