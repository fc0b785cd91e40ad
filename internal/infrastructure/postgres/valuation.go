package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

var _ repository.StockValuer = (*DocumentStore)(nil)

// valuationQuery suma valor * quantidade en NUMERIC. Sólo cuenta documentos con nome,
// categoría conocida, quantidade entera no negativa y valor ausente o decimal no negativo.
const valuationQuery = `
	WITH lotes AS (
		SELECT
			(fields->>'quantidade')::numeric AS quantidade,
			CASE WHEN jsonb_typeof(fields->'valor') IN ('string', 'number')
				THEN (fields->>'valor')::numeric ELSE 0 END AS valor
		FROM documents
		WHERE collection = $1
		  AND btrim(coalesce(fields->>'nome', '')) <> ''
		  AND lower(btrim(fields->>'categoria')) IN ('medicamentos', 'insumos', 'comida')
		  AND fields->>'quantidade' ~ '^[0-9]+$'
		  AND (fields->'valor' IS NULL
		       OR jsonb_typeof(fields->'valor') = 'null'
		       OR fields->>'valor' ~ '^[0-9]+(\.[0-9]+)?$')
	)
	SELECT count(*)::int,
	       coalesce(sum(quantidade), 0)::bigint,
	       coalesce(sum(valor * quantidade), 0)::numeric
	FROM lotes`

// Valuation valoriza la colección en la base; el NUMERIC se lee como decimal.Decimal.
func (s *DocumentStore) Valuation(ctx context.Context, collection string) (repository.StockValuation, error) {
	ctx, span := s.span(ctx, "valuation", collection)
	defer span.End()

	var (
		v     repository.StockValuation
		total decimal.Decimal
	)
	if err := s.q.QueryRow(ctx, valuationQuery, collection).Scan(&v.Batches, &v.Quantity, &total); err != nil {
		span.RecordError(err)
		return repository.StockValuation{}, domain.StoreFailure("valuation "+collection, err)
	}
	v.TotalValue = total
	return v, nil
}
