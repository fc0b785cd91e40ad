package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// Refresher regenera y guarda la instantánea del reporte.
type Refresher interface {
	Refresh(ctx context.Context) (*entity.Report, error)
}

// Recorder métricas de tareas.
type Recorder interface {
	JobFinished(job string, err error, d time.Duration)
}

// ReportRefreshJob handler de TaskReportRefresh.
type ReportRefreshJob struct {
	reports Refresher
	metrics Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// NewReportRefreshJob construye el handler. metrics y lg pueden ser nil.
func NewReportRefreshJob(reports Refresher, metrics Recorder, lg *logger.Logger) *ReportRefreshJob {
	if lg == nil {
		lg = logger.Nop()
	}
	return &ReportRefreshJob{reports: reports, metrics: metrics, logger: lg, now: time.Now}
}

// Handle procesa la tarea. Un payload ilegible no se reintenta.
func (j *ReportRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.reports == nil {
		return errors.New("report refresh: handler no configurado")
	}
	var payload ReportRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	start := j.now()
	defer func() {
		if j.metrics != nil {
			j.metrics.JobFinished(TaskReportRefresh, err, j.now().Sub(start))
		}
	}()

	log := j.logger.WithContext(ctx)
	r, err := j.reports.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Str("trigger", payload.Trigger).Msg("refrescar reporte")
		return err
	}
	log.Info().
		Str("trigger", payload.Trigger).
		Int("productos", r.TotalProducts).
		Dur("duracion", j.now().Sub(start)).
		Msg("reporte refrescado")
	return nil
}
