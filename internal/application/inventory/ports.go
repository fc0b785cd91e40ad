package inventory

import (
	"context"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con un store atado a ella.
// Las lecturas por id dentro de fn bloquean el documento hasta el commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(store repository.RecordStore) error) error
}

// ActivityLog escritura de la bitácora, siempre después del commit.
type ActivityLog interface {
	Append(ctx context.Context, in activity.Entry) activity.AppendOutcome
}

// Recorder métricas de inventario.
type Recorder interface {
	TransferFinished(result string)
	ImportRows(imported, failed int)
}

type nopRecorder struct{}

func (nopRecorder) TransferFinished(string) {}
func (nopRecorder) ImportRows(int, int)     {}
