package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

var _ repository.RecordStore = (*DocumentStore)(nil)

// Querier abstrae pgxpool.Pool y pgx.Tx para que los repos funcionen dentro y fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var tracer = otel.Tracer("github.com/jhoicas/estoque-vet/postgres")

// DocumentStore record store sobre la tabla documents (JSONB).
type DocumentStore struct {
	q Querier
	// forUpdate bloquea la fila leída por Get (sólo dentro de una transacción).
	forUpdate bool
	now       func() time.Time
}

// NewDocumentStore construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentStore(q Querier) *DocumentStore {
	return &DocumentStore{q: q, now: func() time.Time { return time.Now().UTC() }}
}

func newTxDocumentStore(tx pgx.Tx) *DocumentStore {
	s := NewDocumentStore(tx)
	s.forUpdate = true
	return s
}

func (s *DocumentStore) span(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "documents."+op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.collection", collection),
	))
}

// Insert guarda un documento nuevo y devuelve su id.
func (s *DocumentStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ctx, span := s.span(ctx, "insert", collection)
	defer span.End()

	now := s.now()
	body, err := encodeFields(fields, now)
	if err != nil {
		return "", domain.Invalid("", err.Error())
	}
	id := uuid.New().String()
	query := `INSERT INTO documents (collection, id, fields, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.q.Exec(ctx, query, collection, id, body, now); err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return "", fmt.Errorf("insert %s: %w", collection, domain.ErrConflict)
		}
		return "", domain.StoreFailure("insert "+collection, err)
	}
	return id, nil
}

// Get obtiene un documento; (nil, nil) si no existe. Dentro de una tx bloquea la fila.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*repository.Record, error) {
	ctx, span := s.span(ctx, "get", collection)
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT id::text, fields, created_at FROM documents WHERE collection = $1 AND id = $2`
	if s.forUpdate {
		query += ` FOR UPDATE`
	}
	rec, err := scanRecord(s.q.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, domain.StoreFailure("get "+collection, err)
	}
	return rec, nil
}

// Replace sustituye todos los campos del documento.
func (s *DocumentStore) Replace(ctx context.Context, collection, id string, fields map[string]any) error {
	ctx, span := s.span(ctx, "replace", collection)
	defer span.End()

	body, err := encodeFields(fields, s.now())
	if err != nil {
		return domain.Invalid("", err.Error())
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	tag, err := s.q.Exec(ctx, `UPDATE documents SET fields = $3 WHERE collection = $1 AND id = $2`, collection, id, body)
	if err != nil {
		span.RecordError(err)
		return domain.StoreFailure("replace "+collection, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("replace %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el documento; no falla si ya no existe.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	ctx, span := s.span(ctx, "delete", collection)
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := s.q.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		span.RecordError(err)
		return domain.StoreFailure("delete "+collection, err)
	}
	return nil
}

// ListAll todos los documentos de la colección en orden natural.
func (s *DocumentStore) ListAll(ctx context.Context, collection string) ([]repository.Record, error) {
	ctx, span := s.span(ctx, "list_all", collection)
	defer span.End()

	query := `
		SELECT id::text, fields, created_at FROM documents
		WHERE collection = $1
		ORDER BY created_at, id`
	return s.queryRecords(ctx, span, "list "+collection, query, collection)
}

// Query ordena por un campo del documento. Los campos de fecha se guardan con ancho fijo
// en UTC, así que el orden textual es cronológico.
func (s *DocumentStore) Query(ctx context.Context, collection string, opts repository.QueryOptions) ([]repository.Record, error) {
	ctx, span := s.span(ctx, "query", collection)
	defer span.End()

	dir := "ASC"
	if opts.Descending {
		dir = "DESC"
	}
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	query := `
		SELECT id::text, fields, created_at FROM documents
		WHERE collection = $1
		ORDER BY fields->>$2 ` + dir + ` NULLS LAST, created_at ` + dir + `, id ` + dir + `
		LIMIT $3`
	return s.queryRecords(ctx, span, "query "+collection, query, collection, opts.OrderBy, limit)
}

func (s *DocumentStore) queryRecords(ctx context.Context, span trace.Span, op, query string, args ...any) ([]repository.Record, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreFailure(op, err)
	}
	defer rows.Close()

	var out []repository.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, domain.StoreFailure(op, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, domain.StoreFailure(op, err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*repository.Record, error) {
	var (
		rec  repository.Record
		body []byte
	)
	if err := row.Scan(&rec.ID, &body, &rec.CreatedAt); err != nil {
		return nil, err
	}
	fields, err := decodeFields(body)
	if err != nil {
		return nil, err
	}
	rec.Fields = fields
	return &rec, nil
}

// encodeFields serializa a JSON; fechas a UTC con ancho fijo y el centinela de timestamp a now.
func encodeFields(fields map[string]any, now time.Time) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case time.Time:
			out[k] = t.UTC().Format(entity.StoredTimeLayout)
		case *time.Time:
			if t == nil {
				out[k] = nil
			} else {
				out[k] = t.UTC().Format(entity.StoredTimeLayout)
			}
		default:
			if repository.IsServerTimestamp(v) {
				out[k] = now.UTC().Format(entity.StoredTimeLayout)
				continue
			}
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// decodeFields conserva los números como json.Number para no perder precisión en valor.
func decodeFields(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decodificar documento: %w", err)
	}
	return fields, nil
}
