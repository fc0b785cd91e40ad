package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// maxTxAttempts intentos de una transacción abortada por deadlock o por serialización.
const maxTxAttempts = 3

// Run ejecuta fn con un store atado a la tx; las lecturas por id toman FOR UPDATE, así que dos
// transferencias sobre el mismo lote se serializan. Un error de fn deshace todo.
// Dos transferencias cruzadas pueden bloquear las mismas filas en orden inverso: la que
// Postgres aborta (40P01) se repite entera, así que fn debe poder ejecutarse más de una vez.
func (r *TxRunner) Run(ctx context.Context, fn func(store repository.RecordStore) error) (err error) {
	ctx, span := tracer.Start(ctx, "documents.tx")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rollback")
		}
		span.End()
	}()

	return retryAborted(span, func() error { return r.runOnce(ctx, fn) })
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(store repository.RecordStore) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.StoreFailure("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newTxDocumentStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.StoreFailure("commit transaction", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func retryAborted(span trace.Span, attempt func() error) error {
	for n := 1; ; n++ {
		err := attempt()
		if err == nil || n == maxTxAttempts || !isTxAborted(err) {
			return err
		}
		span.AddEvent("tx.retry", trace.WithAttributes(
			attribute.Int("tx.attempt", n),
			attribute.String("error", err.Error()),
		))
	}
}
