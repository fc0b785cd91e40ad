package repository

import (
	"context"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// ReportCache guarda la última instantánea del reporte general.
type ReportCache interface {
	// Get devuelve (nil, nil) si no hay instantánea vigente.
	Get(ctx context.Context) (*entity.Report, error)
	Set(ctx context.Context, report *entity.Report) error
}
