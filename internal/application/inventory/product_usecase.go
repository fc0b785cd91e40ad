package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

// ProductInput campos editables de un lote.
type ProductInput struct {
	Nome           string
	Categoria      string
	TipoQuantidade string
	Quantidade     int64
	Valor          decimal.Decimal
	Validade       *time.Time
	Fornecedor     string
	Lote           string
}

// ProductFilter filtros de listado.
type ProductFilter struct {
	Search    string // subcadena del nombre, sin distinguir mayúsculas
	Categoria string
}

// MutationResult lote afectado más el resultado del registro de actividad.
type MutationResult struct {
	Product *entity.Product
	Log     activity.AppendOutcome
}

// CategoryTotal cantidad total de una categoría (datos del gráfico).
type CategoryTotal struct {
	Categoria  entity.Categoria
	Quantidade int64
}

// LocationSummary resumen de un local.
type LocationSummary struct {
	Location     inv.Location
	TotalBatches int
	TotalItems   int64
	TotalValue   decimal.Decimal
	ByCategory   []CategoryTotal
	LowStock     []*entity.Product
	Threshold    int64
}

// ProductUseCase CRUD de lotes por local; cada mutación deja un registro de actividad.
type ProductUseCase struct {
	catalog           *inv.Catalog
	store             repository.RecordStore
	log               ActivityLog
	lowStockThreshold int64
	now               func() time.Time
}

// NewProductUseCase construye el caso de uso. lowStockThreshold <= 0 usa 5.
func NewProductUseCase(catalog *inv.Catalog, store repository.RecordStore, log ActivityLog, lowStockThreshold int64) *ProductUseCase {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &ProductUseCase{catalog: catalog, store: store, log: log, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// List lotes del local en orden natural, filtrados.
func (uc *ProductUseCase) List(ctx context.Context, location string, f ProductFilter) ([]*entity.Product, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	all, err := loadProducts(ctx, uc.store, loc.Collection)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var cat entity.Categoria
	if f.Categoria != "" {
		if cat, err = entity.ParseCategoria(f.Categoria); err != nil {
			return nil, err
		}
	}
	out := make([]*entity.Product, 0, len(all))
	for _, p := range all {
		if search != "" && !strings.Contains(strings.ToLower(p.Nome), search) {
			continue
		}
		if cat != "" && p.Categoria != cat {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Get un lote por id.
func (uc *ProductUseCase) Get(ctx context.Context, location, id string) (*entity.Product, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	return getProduct(ctx, uc.store, loc, id)
}

// Create inserta un lote y registra adicao.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, location string, in ProductInput) (*MutationResult, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	p, err := uc.build(in)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	p.UserID, p.CreatedAt, p.UpdatedAt = actor.UserID, now, now
	return uc.insert(ctx, actor, loc, p)
}

// insert comparte el camino insertar + registrar con la importación CSV.
func (uc *ProductUseCase) insert(ctx context.Context, actor entity.Actor, loc inv.Location, p *entity.Product) (*MutationResult, error) {
	id, err := uc.store.Insert(ctx, loc.Collection, p.Fields())
	if err != nil {
		return nil, domain.StoreFailure("insertar lote", err)
	}
	p.ID = id
	out := uc.log.Append(ctx, activity.Entry{
		Actor:      actor,
		Kind:       entity.OpAdicao,
		Item:       p.Nome,
		Origem:     string(loc.Key),
		Quantidade: p.Quantidade,
		Detalhes: map[string]any{
			"valorUnitario": p.Valor.StringFixed(2),
			"id":            id,
		},
	})
	return &MutationResult{Product: p, Log: out}, nil
}

// Update reemplaza los campos editables y registra atualizacao.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, location, id string, in ProductInput) (*MutationResult, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	current, err := getProduct(ctx, uc.store, loc, id)
	if err != nil {
		return nil, err
	}
	next, err := uc.build(in)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.TransferredAt = current.TransferredAt
	next.UserID = actor.UserID
	next.UpdatedAt = uc.now().UTC()
	if err := uc.store.Replace(ctx, loc.Collection, id, next.Fields()); err != nil {
		return nil, domain.StoreFailure("actualizar lote", err)
	}
	out := uc.log.Append(ctx, activity.Entry{
		Actor:      actor,
		Kind:       entity.OpAtualizacao,
		Item:       next.Nome,
		Origem:     string(loc.Key),
		Quantidade: next.Quantidade,
		Detalhes: map[string]any{
			"valorUnitario": next.Valor.StringFixed(2),
			"id":            id,
		},
	})
	return &MutationResult{Product: next, Log: out}, nil
}

// Delete elimina el lote (releído justo antes) y registra remocao con la cantidad que tenía.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Actor, location, id string) (*MutationResult, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	current, err := getProduct(ctx, uc.store, loc, id)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Delete(ctx, loc.Collection, id); err != nil {
		return nil, domain.StoreFailure("eliminar lote", err)
	}
	out := uc.log.Append(ctx, activity.Entry{
		Actor:      actor,
		Kind:       entity.OpRemocao,
		Item:       current.Nome,
		Origem:     string(loc.Key),
		Quantidade: current.Quantidade,
	})
	return &MutationResult{Product: current, Log: out}, nil
}

// Summary totales por categoría, valorización y lotes con poco stock.
func (uc *ProductUseCase) Summary(ctx context.Context, location string) (*LocationSummary, error) {
	loc, err := uc.catalog.Lookup(location)
	if err != nil {
		return nil, err
	}
	products, err := loadProducts(ctx, uc.store, loc.Collection)
	if err != nil {
		return nil, err
	}
	totals := make(map[entity.Categoria]int64, len(entity.Categorias))
	s := &LocationSummary{Location: loc, TotalValue: decimal.Zero, Threshold: uc.lowStockThreshold, LowStock: []*entity.Product{}}
	for _, p := range products {
		s.TotalBatches++
		s.TotalItems += p.Quantidade
		s.TotalValue = s.TotalValue.Add(p.TotalValue())
		totals[p.Categoria] += p.Quantidade
		if p.Quantidade < uc.lowStockThreshold {
			s.LowStock = append(s.LowStock, p)
		}
	}
	for _, c := range entity.Categorias {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Categoria: c, Quantidade: totals[c]})
	}
	return s, nil
}

func (uc *ProductUseCase) build(in ProductInput) (*entity.Product, error) {
	cat, err := entity.ParseCategoria(in.Categoria)
	if err != nil {
		return nil, err
	}
	tipo := entity.TipoUnitario
	if in.TipoQuantidade != "" {
		if tipo, err = entity.ParseTipoQuantidade(in.TipoQuantidade); err != nil {
			return nil, err
		}
	}
	p := &entity.Product{
		Nome:           strings.TrimSpace(in.Nome),
		Categoria:      cat,
		TipoQuantidade: tipo,
		Quantidade:     in.Quantidade,
		Valor:          in.Valor,
		Fornecedor:     strings.TrimSpace(in.Fornecedor),
		Lote:           strings.TrimSpace(in.Lote),
	}
	if in.Validade != nil {
		v := time.Date(in.Validade.Year(), in.Validade.Month(), in.Validade.Day(), 0, 0, 0, 0, time.UTC)
		p.Validade = &v
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func getProduct(ctx context.Context, store repository.RecordStore, loc inv.Location, id string) (*entity.Product, error) {
	rec, err := store.Get(ctx, loc.Collection, id)
	if err != nil {
		return nil, domain.StoreFailure("leer lote", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("lote %s en %s: %w", id, loc.Key, domain.ErrNotFound)
	}
	return entity.ProductFromFields(rec.ID, rec.Fields)
}

// loadProducts decodifica la colección; un documento malformado hace fallar la lectura.
func loadProducts(ctx context.Context, store repository.RecordStore, collection string) ([]*entity.Product, error) {
	recs, err := store.ListAll(ctx, collection)
	if err != nil {
		return nil, domain.StoreFailure("listar "+collection, err)
	}
	out := make([]*entity.Product, 0, len(recs))
	for _, r := range recs {
		p, err := entity.ProductFromFields(r.ID, r.Fields)
		if err != nil {
			return nil, fmt.Errorf("documento %s/%s: %w", collection, r.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}
