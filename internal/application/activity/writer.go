// Package activity escribe y lee la bitácora de operaciones ("registros").
//
// La escritura es posterior al commit de la mutación que describe y de mejor esfuerzo:
// un fallo se devuelve como AppendOutcome.Err, se registra en el log y nunca revierte
// ni hace fallar la operación principal.
package activity

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// Collection colección de la bitácora.
const Collection = "registros"

// Límites de lectura de Recent.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// DisplayLayout formato de dataFormatada (dd/MM/yyyy HH:mm:ss).
const DisplayLayout = "02/01/2006 15:04:05"

// EventPublisher publica cada registro guardado hacia sistemas externos.
type EventPublisher interface {
	PublishActivity(ctx context.Context, entry *entity.ActivityEntry) error
}

// Recorder métricas de la bitácora.
type Recorder interface {
	ActivityAppended(kind entity.OperationKind, ok bool)
}

// Entry datos de una operación a registrar.
type Entry struct {
	Actor      entity.Actor
	Kind       entity.OperationKind
	Item       string
	Origem     string
	Destino    *string
	Quantidade any
	Detalhes   map[string]any
}

// AppendOutcome resultado de la escritura, separado del resultado de la operación principal.
type AppendOutcome struct {
	ID  string
	Err error
}

// OK indica si el registro quedó guardado.
func (o AppendOutcome) OK() bool { return o.Err == nil }

// Writer escribe y lee registros sobre el record store.
type Writer struct {
	store     repository.RecordStore
	loc       *time.Location
	now       func() time.Time
	publisher EventPublisher
	metrics   Recorder
	log       *logger.Logger
}

// Option configura el Writer.
type Option func(*Writer)

// WithPublisher agrega un publicador de eventos (p. ej. Kafka).
func WithPublisher(p EventPublisher) Option { return func(w *Writer) { w.publisher = p } }

// WithRecorder agrega métricas.
func WithRecorder(r Recorder) Option { return func(w *Writer) { w.metrics = r } }

// WithClock reemplaza el reloj usado para dataFormatada.
func WithClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

// NewWriter construye el Writer. loc es la zona de dataFormatada.
func NewWriter(store repository.RecordStore, loc *time.Location, log *logger.Logger, opts ...Option) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	w := &Writer{store: store, loc: loc, now: time.Now, log: log}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Append guarda un registro. Nunca entra en pánico ni propaga: el fallo queda en AppendOutcome.
func (w *Writer) Append(ctx context.Context, in Entry) AppendOutcome {
	entry := &entity.ActivityEntry{
		UsuarioEmail:  in.Actor.Email,
		TipoOperacao:  in.Kind,
		Item:          in.Item,
		Origem:        in.Origem,
		Destino:       in.Destino,
		Quantidade:    in.Quantidade,
		Detalhes:      in.Detalhes,
		DataFormatada: w.now().In(w.loc).Format(DisplayLayout),
	}
	fields := entry.Fields()
	fields[entity.FieldTimestamp] = repository.ServerTimestamp

	id, err := w.store.Insert(ctx, Collection, fields)
	if w.metrics != nil {
		w.metrics.ActivityAppended(in.Kind, err == nil)
	}
	if err != nil {
		err = domain.StoreFailure("append registro", err)
		w.log.WithContext(ctx).Error().Err(err).
			Str("tipo", string(in.Kind)).
			Str("item", in.Item).
			Str("usuario", in.Actor.Email).
			Msg("no se pudo guardar el registro de actividad")
		return AppendOutcome{Err: err}
	}
	entry.ID = id

	if w.publisher != nil {
		if perr := w.publisher.PublishActivity(ctx, entry); perr != nil {
			w.log.WithContext(ctx).Warn().Err(perr).Str("registro_id", id).Msg("publicar registro")
		}
	}
	return AppendOutcome{ID: id}
}

// Recent los limit registros más recientes (timestamp descendente).
func (w *Writer) Recent(ctx context.Context, limit int) ([]entity.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return w.query(ctx, limit)
}

// All la bitácora completa, más reciente primero.
func (w *Writer) All(ctx context.Context) ([]entity.ActivityEntry, error) {
	return w.query(ctx, 0)
}

func (w *Writer) query(ctx context.Context, limit int) ([]entity.ActivityEntry, error) {
	recs, err := w.store.Query(ctx, Collection, repository.QueryOptions{
		OrderBy:    entity.FieldTimestamp,
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, domain.StoreFailure("listar registros", err)
	}
	out := make([]entity.ActivityEntry, 0, len(recs))
	for _, r := range recs {
		e, err := entity.ActivityEntryFromFields(r.ID, r.Fields)
		if err != nil {
			w.log.WithContext(ctx).Warn().Err(err).Str("registro_id", r.ID).Msg("registro ignorado")
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}
