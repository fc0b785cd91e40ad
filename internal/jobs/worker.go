package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// Worker servidor asynq más el scheduler opcional.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// WorkerConfig dependencias del worker. ReportRefreshCron vacío desactiva el scheduler.
type WorkerConfig struct {
	RedisOpts         asynq.RedisClientOpt
	Logger            *logger.Logger
	ReportRefresh     *ReportRefreshJob
	ReportRefreshCron string
	Location          *time.Location
}

// NewWorker registra los handlers y, si hay cron, la tarea periódica.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{QueueDefault: 1},
		Logger:      asynqLogger{l: cfg.Logger},
	})
	mux := asynq.NewServeMux()
	if cfg.ReportRefresh != nil {
		mux.HandleFunc(TaskReportRefresh, cfg.ReportRefresh.Handle)
	}

	var scheduler *asynq.Scheduler
	if cfg.ReportRefreshCron != "" && cfg.ReportRefresh != nil {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{
			Location: cfg.Location,
			Logger:   asynqLogger{l: cfg.Logger},
		})
		task, err := NewReportRefreshTask("cron")
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cfg.ReportRefreshCron, task); err != nil {
			return nil, err
		}
	}
	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run procesa tareas hasta que se cancele ctx.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: no configurado")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	w.logger.Info().Msg("worker de tareas iniciado")
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReportRefresh pide un refresco fuera del cron.
func (c *Client) EnqueueReportRefresh(ctx context.Context, trigger string) (*asynq.TaskInfo, error) {
	task, err := NewReportRefreshTask(trigger)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}

// asynqLogger adapta el logger del servicio a asynq.Logger.
type asynqLogger struct {
	l *logger.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Str("component", "asynq").Msg(sprint(args)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Str("component", "asynq").Msg(sprint(args)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Str("component", "asynq").Msg(sprint(args)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Str("component", "asynq").Msg(sprint(args)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Str("component", "asynq").Msg(sprint(args)) }

func sprint(args []interface{}) string {
	return fmt.Sprint(args...)
}
