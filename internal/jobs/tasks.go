// Package jobs tareas en segundo plano sobre asynq (Redis).
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola de las tareas del servicio.
	QueueDefault = "default"
	// TaskReportRefresh regenera el reporte general en la caché.
	TaskReportRefresh = "report:refresh"
)

// ReportRefreshPayload origen de la solicitud (cron o manual).
type ReportRefreshPayload struct {
	Trigger string `json:"trigger"`
}

// NewReportRefreshTask construye la tarea. Unique evita encolar dos refrescos a la vez.
func NewReportRefreshTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportRefreshPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportRefresh, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Minute),
	), nil
}
