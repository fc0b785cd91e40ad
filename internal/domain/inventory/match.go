package inventory

import (
	"time"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// SameLot indica si dos lotes representan el mismo producto para fusionar cantidades:
// nome, tipoQuantidade, categoria, valor (numérico), fornecedor y día de validade.
func SameLot(a, b *entity.Product) bool {
	return a.Nome == b.Nome &&
		a.TipoQuantidade == b.TipoQuantidade &&
		a.Categoria == b.Categoria &&
		a.Valor.Equal(b.Valor) &&
		a.Fornecedor == b.Fornecedor &&
		sameDay(a.Validade, b.Validade)
}

// sameDay compara año, mes y día tal como están guardados, sin convertir zona.
func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindMatch primer lote de candidates que coincide con src. candidates llega en el orden natural
// del almacén (creación ascendente, luego id), que es el desempate entre varias coincidencias.
func FindMatch(src *entity.Product, candidates []*entity.Product) *entity.Product {
	for _, c := range candidates {
		if SameLot(src, c) {
			return c
		}
	}
	return nil
}
