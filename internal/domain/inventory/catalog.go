package inventory

import "github.com/jhoicas/estoque-vet/internal/domain"

// LocationKey identificador estable de un local de stock.
type LocationKey string

const (
	LocationPrincipal  LocationKey = "principal"
	LocationVet        LocationKey = "vet"
	LocationInternacao LocationKey = "internacao"
	LocationReposicao  LocationKey = "reposicao"
)

// Location un local del catálogo.
type Location struct {
	Key         LocationKey
	Collection  string
	DisplayName string
}

// Catalog mapeo fijo local -> colección. Inmutable: se construye una vez y se pasa explícitamente.
type Catalog struct {
	locations []Location
	byKey     map[LocationKey]Location
}

// DefaultCatalog los cuatro locales de la clínica.
func DefaultCatalog() *Catalog {
	return newCatalog([]Location{
		{Key: LocationPrincipal, Collection: "estoque_principal", DisplayName: "Estoque Principal"},
		{Key: LocationVet, Collection: "estoque_vet", DisplayName: "Estoque Vet"},
		{Key: LocationInternacao, Collection: "estoque_internacao", DisplayName: "Estoque Internação"},
		{Key: LocationReposicao, Collection: "estoque_reposicao", DisplayName: "Reposição de Consultórios"},
	})
}

func newCatalog(locs []Location) *Catalog {
	c := &Catalog{
		locations: make([]Location, len(locs)),
		byKey:     make(map[LocationKey]Location, len(locs)),
	}
	copy(c.locations, locs)
	for _, l := range locs {
		c.byKey[l.Key] = l
	}
	return c
}

// Locations copia de los locales en orden de declaración.
func (c *Catalog) Locations() []Location {
	out := make([]Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Lookup devuelve el local o ValidationError si la clave no existe.
func (c *Catalog) Lookup(key string) (Location, error) {
	l, ok := c.byKey[LocationKey(key)]
	if !ok {
		return Location{}, domain.Invalid("location", "local desconocido: "+key)
	}
	return l, nil
}

// Collection colección que respalda el local.
func (c *Catalog) Collection(key string) (string, error) {
	l, err := c.Lookup(key)
	if err != nil {
		return "", err
	}
	return l.Collection, nil
}

// DisplayName nombre legible; la propia clave si no existe.
func (c *Catalog) DisplayName(key string) string {
	if l, ok := c.byKey[LocationKey(key)]; ok {
		return l.DisplayName
	}
	return key
}
