package repository

import (
	"context"
	"time"
)

// Record documento genérico: ID generado por el almacén y bolsa de campos sin tipo.
type Record struct {
	ID     string
	Fields map[string]any
	// CreatedAt lo asigna el almacén; define el orden natural junto con ID.
	CreatedAt time.Time
}

// serverTimestamp marca un campo cuyo valor asigna el almacén al insertar.
type serverTimestamp struct{}

// ServerTimestamp se sustituye por el reloj del almacén en Insert.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp indica si v es el centinela ServerTimestamp.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// QueryOptions orden y límite para Query. Limit <= 0 significa sin límite.
type QueryOptions struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// RecordStore puerto del almacén documental: colecciones con nombre, cada una un mapa id -> campos.
// Todas las operaciones pueden fallar con domain.ErrStoreUnavailable.
// ListAll devuelve los documentos en orden natural: CreatedAt ascendente, luego ID ascendente.
type RecordStore interface {
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Get devuelve (nil, nil) si el documento no existe.
	Get(ctx context.Context, collection, id string) (*Record, error)
	Replace(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	ListAll(ctx context.Context, collection string) ([]Record, error)
	Query(ctx context.Context, collection string, opts QueryOptions) ([]Record, error)
}
