// Package memory implementa el record store en memoria (tests y STORE_DRIVER=memory).
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

var _ repository.RecordStore = (*DocumentStore)(nil)

type document struct {
	fields    map[string]any
	createdAt time.Time
}

// DocumentStore almacén documental en memoria. Seguro para uso concurrente.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]document
	now         func() time.Time
	newID       func() string
}

// Option configura el DocumentStore.
type Option func(*DocumentStore)

// WithClock reemplaza el reloj del almacén.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) { s.now = now }
}

// WithIDGenerator reemplaza el generador de ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *DocumentStore) { s.newID = gen }
}

// NewDocumentStore construye un almacén vacío.
func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		collections: make(map[string]map[string]document),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *DocumentStore) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(collection, fields), nil
}

func (s *DocumentStore) insertLocked(collection string, fields map[string]any) string {
	now := s.now()
	id := s.newID()
	stored := copyFields(fields)
	for k, v := range stored {
		if repository.IsServerTimestamp(v) {
			stored[k] = now
		}
	}
	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]document)
		s.collections[collection] = coll
	}
	coll[id] = document{fields: stored, createdAt: now}
	return id
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (*repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(collection, id), nil
}

func (s *DocumentStore) getLocked(collection, id string) *repository.Record {
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil
	}
	return &repository.Record{ID: id, Fields: copyFields(doc.fields), CreatedAt: doc.createdAt}
}

func (s *DocumentStore) Replace(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(collection, id, fields)
}

func (s *DocumentStore) replaceLocked(collection, id string, fields map[string]any) error {
	doc, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("replace %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	doc.fields = copyFields(fields)
	s.collections[collection][id] = doc
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(collection, id)
	return nil
}

func (s *DocumentStore) deleteLocked(collection, id string) {
	delete(s.collections[collection], id)
}

func (s *DocumentStore) ListAll(_ context.Context, collection string) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(collection), nil
}

func (s *DocumentStore) listLocked(collection string) []repository.Record {
	coll := s.collections[collection]
	out := make([]repository.Record, 0, len(coll))
	for id, doc := range coll {
		out = append(out, repository.Record{ID: id, Fields: copyFields(doc.fields), CreatedAt: doc.createdAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) Query(_ context.Context, collection string, opts repository.QueryOptions) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLocked(collection, opts), nil
}

func (s *DocumentStore) queryLocked(collection string, opts repository.QueryOptions) []repository.Record {
	out := s.listLocked(collection)
	if opts.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i].Fields[opts.OrderBy], out[j].Fields[opts.OrderBy])
			if opts.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// compareValues ordena nil primero, luego números, fechas y texto.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case time.Time:
		bv := b.(time.Time)
		return av.Compare(bv)
	case string:
		return strings.Compare(av, b.(string))
	}
	if ra == 1 {
		return toDecimal(a).Cmp(toDecimal(b))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int32, int64, float64, decimal.Decimal:
		return 1
	case time.Time:
		return 2
	case string:
		return 3
	}
	return 4
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n)
	case decimal.Decimal:
		return n
	}
	return decimal.Zero
}

// copyFields copia superficial; los valores guardados son escalares o fechas.
func copyFields(f map[string]any) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
