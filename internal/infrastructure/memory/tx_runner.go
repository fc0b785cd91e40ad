package memory

import (
	"context"

	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

// TxRunner serializa las transacciones sobre un DocumentStore y restaura el estado previo si fn falla.
type TxRunner struct {
	store *DocumentStore
}

// NewTxRunner construye el runner sobre el almacén dado.
func NewTxRunner(store *DocumentStore) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con acceso exclusivo al almacén.
func (r *TxRunner) Run(_ context.Context, fn func(store repository.RecordStore) error) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshotLocked()
	if err := fn(&txView{s: s}); err != nil {
		s.collections = snapshot
		return err
	}
	return nil
}

func (s *DocumentStore) snapshotLocked() map[string]map[string]document {
	out := make(map[string]map[string]document, len(s.collections))
	for name, coll := range s.collections {
		c := make(map[string]document, len(coll))
		for id, doc := range coll {
			c[id] = document{fields: copyFields(doc.fields), createdAt: doc.createdAt}
		}
		out[name] = c
	}
	return out
}

// txView opera sobre el almacén con el lock ya tomado por Run.
type txView struct {
	s *DocumentStore
}

func (v *txView) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	return v.s.insertLocked(collection, fields), nil
}

func (v *txView) Get(_ context.Context, collection, id string) (*repository.Record, error) {
	return v.s.getLocked(collection, id), nil
}

func (v *txView) Replace(_ context.Context, collection, id string, fields map[string]any) error {
	return v.s.replaceLocked(collection, id, fields)
}

func (v *txView) Delete(_ context.Context, collection, id string) error {
	v.s.deleteLocked(collection, id)
	return nil
}

func (v *txView) ListAll(_ context.Context, collection string) ([]repository.Record, error) {
	return v.s.listLocked(collection), nil
}

func (v *txView) Query(_ context.Context, collection string, opts repository.QueryOptions) ([]repository.Record, error) {
	return v.s.queryLocked(collection, opts), nil
}
