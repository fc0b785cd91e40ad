package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoque-vet/internal/domain"
)

func TestIsTxAborted(t *testing.T) {
	deadlock := &pgconn.PgError{Code: codeDeadlock}
	assert.True(t, isTxAborted(deadlock))
	assert.True(t, isTxAborted(domain.StoreFailure("get estoque_vet", deadlock)))
	assert.True(t, isTxAborted(&pgconn.PgError{Code: codeSerialization}))
	assert.False(t, isTxAborted(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isTxAborted(domain.ErrInsufficientQuantity))
}

func TestRetryAborted(t *testing.T) {
	span := trace.SpanFromContext(context.Background())
	deadlock := domain.StoreFailure("get estoque_vet", &pgconn.PgError{Code: codeDeadlock})

	calls := 0
	err := retryAborted(span, func() error {
		calls++
		if calls == 1 {
			return deadlock
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = retryAborted(span, func() error {
		calls++
		return deadlock
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, maxTxAttempts, calls)

	calls = 0
	err = retryAborted(span, func() error {
		calls++
		return errors.New("lote no encontrado")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
