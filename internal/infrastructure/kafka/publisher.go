// Package kafka publica cada registro de actividad guardado como evento.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// EventTypeActivity valor del header event_type.
const EventTypeActivity = "registro.criado"

// ActivityEvent cuerpo del mensaje.
type ActivityEvent struct {
	EventType     string         `json:"event_type"`
	ID            string         `json:"id"`
	UsuarioEmail  string         `json:"usuario_email"`
	TipoOperacao  string         `json:"tipo_operacao"`
	Item          string         `json:"item"`
	Origem        string         `json:"origem"`
	Destino       *string        `json:"destino,omitempty"`
	Quantidade    any            `json:"quantidade,omitempty"`
	Detalhes      map[string]any `json:"detalhes,omitempty"`
	DataFormatada string         `json:"data_formatada"`
	PublishedAt   time.Time      `json:"published_at"`
}

// NewConfig configuración del productor síncrono: acks de todas las réplicas y 3 reintentos.
func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.MaxMessageBytes = 1000000
	return cfg
}

// ActivityPublisher envía registros a un tópico; la clave es el origen, así los eventos
// de un mismo local conservan el orden dentro de la partición.
type ActivityPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewActivityPublisher conecta con los brokers.
func NewActivityPublisher(brokers []string, topic string, log *logger.Logger) (*ActivityPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: crear productor: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador kafka inicializado")
	return NewActivityPublisherWithProducer(producer, topic, log), nil
}

// NewActivityPublisherWithProducer usa un productor existente (tests con sarama/mocks).
func NewActivityPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *ActivityPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityPublisher{producer: producer, topic: topic, log: log}
}

// PublishActivity publica el registro con el contexto de traza en los headers.
func (p *ActivityPublisher) PublishActivity(ctx context.Context, e *entity.ActivityEntry) error {
	ctx, span := otel.Tracer("github.com/jhoicas/estoque-vet/kafka").Start(ctx, "kafka.publish.registro",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.String("registro.tipo", string(e.TipoOperacao)),
		),
	)
	defer span.End()

	body, err := json.Marshal(ActivityEvent{
		EventType:     EventTypeActivity,
		ID:            e.ID,
		UsuarioEmail:  e.UsuarioEmail,
		TipoOperacao:  string(e.TipoOperacao),
		Item:          e.Item,
		Origem:        e.Origem,
		Destino:       e.Destino,
		Quantidade:    e.Quantidade,
		Detalhes:      e.Detalhes,
		DataFormatada: e.DataFormatada,
		PublishedAt:   time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serializar evento")
		return fmt.Errorf("kafka: serializar registro: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(EventTypeActivity)},
		{Key: []byte("registro_id"), Value: []byte(e.ID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(e.Origem),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enviar mensaje")
		return fmt.Errorf("kafka: enviar registro %s: %w", e.ID, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	p.log.WithContext(ctx).Debug().
		Str("registro_id", e.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("registro publicado")
	return nil
}

// Close cierra el productor.
func (p *ActivityPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
