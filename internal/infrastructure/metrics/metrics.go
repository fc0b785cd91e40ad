// Package metrics expone métricas Prometheus de HTTP, transferencias, bitácora, importaciones y tareas.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

const namespace = "estoque"

// Metrics registro propio (no el global) con los colectores del servicio.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transfers       *prometheus.CounterVec
	activity        *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

// New inicializa el registro y los colectores.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por ruta, método y status.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP por ruta.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transferencias por resultado.",
		}, []string{"result"}),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_log_appends_total",
			Help:      "Escrituras en la bitácora por tipo y resultado.",
		}, []string{"tipo", "result"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Filas de importación CSV por resultado.",
		}, []string{"result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Ejecuciones de tareas en segundo plano por estado.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duración de tareas en segundo plano.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration, m.transfers, m.activity, m.importRows,
		m.jobRuns, m.jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registerer para colectores adicionales.
func (m *Metrics) Registerer() prometheus.Registerer { return m.registry }

// Handler endpoint /metrics para fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(m.handler)
}

// Middleware registra cada petición con el patrón de ruta (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// TransferFinished cuenta una transferencia terminada.
func (m *Metrics) TransferFinished(result string) {
	m.transfers.WithLabelValues(result).Inc()
}

// ImportRows cuenta filas importadas y rechazadas.
func (m *Metrics) ImportRows(imported, failed int) {
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

// ActivityAppended cuenta escrituras en la bitácora.
func (m *Metrics) ActivityAppended(kind entity.OperationKind, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.activity.WithLabelValues(string(kind), result).Inc()
}

// JobFinished registra una ejecución de tarea.
func (m *Metrics) JobFinished(job string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
