// Package report arma el reporte general: rankings de entradas y salidas a partir de la bitácora
// y valorización del stock actual de todos los locales.
package report

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// TopN tamaño de cada ranking.
const TopN = 5

// DisplayLayout formato de DataGeracao.
const DisplayLayout = "02/01/2006 15:04:05"

var tracer = otel.Tracer("github.com/jhoicas/estoque-vet/report")

// LogReader lectura completa de la bitácora, más reciente primero.
type LogReader interface {
	All(ctx context.Context) ([]entity.ActivityEntry, error)
}

// UseCase genera el reporte general.
type UseCase struct {
	catalog *inv.Catalog
	store   repository.RecordStore
	log     LogReader
	cache   repository.ReportCache
	loc     *time.Location
	logger  *logger.Logger
	now     func() time.Time
}

// Option configura el UseCase.
type Option func(*UseCase)

// WithCache guarda cada reporte generado y sirve la última instantánea.
func WithCache(c repository.ReportCache) Option { return func(uc *UseCase) { uc.cache = c } }

// WithClock reemplaza el reloj.
func WithClock(now func() time.Time) Option { return func(uc *UseCase) { uc.now = now } }

// NewUseCase construye el generador. loc es la zona de DataGeracao.
func NewUseCase(catalog *inv.Catalog, store repository.RecordStore, log LogReader, loc *time.Location, lg *logger.Logger, opts ...Option) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	if lg == nil {
		lg = logger.Nop()
	}
	uc := &UseCase{catalog: catalog, store: store, log: log, loc: loc, logger: lg, now: time.Now}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Generate valoriza los cuatro locales en paralelo y lee la bitácora completa. Si el almacén
// implementa repository.StockValuer la valorización se calcula ahí.
func (uc *UseCase) Generate(ctx context.Context) (*entity.Report, error) {
	ctx, span := tracer.Start(ctx, "report.generate")
	defer span.End()

	locations := uc.catalog.Locations()
	values := make([]entity.LocationValue, len(locations))
	var entries []entity.ActivityEntry

	valuer, _ := uc.store.(repository.StockValuer)
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range locations {
		g.Go(func() error {
			lv, err := uc.locationValue(gctx, valuer, l)
			if err != nil {
				return err
			}
			values[i] = lv
			return nil
		})
	}
	g.Go(func() error {
		var err error
		entries, err = uc.log.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reporte fallido")
		return nil, err
	}

	now := uc.now()
	r := &entity.Report{
		GeneratedAt: now.UTC(),
		DataGeracao: now.In(uc.loc).Format(DisplayLayout),
		TotalValue:  decimal.Zero,
		ByLocation:  values,
	}
	for _, lv := range values {
		r.TotalProducts += lv.Products
		r.TotalValue = r.TotalValue.Add(lv.TotalValue)
	}

	var in, out []entity.ActivityEntry
	for _, e := range entries {
		switch e.TipoOperacao {
		case entity.OpAdicao:
			in = append(in, e)
		case entity.OpRemocao, entity.OpTransferencia:
			out = append(out, e)
		}
	}
	r.Entries = rank(in)
	r.Exits = rank(out)

	span.SetAttributes(
		attribute.Int("report.products", r.TotalProducts),
		attribute.Int("report.log_entries", len(entries)),
	)
	return r, nil
}

// rank agrupa por ítem. entries llega más reciente primero, así que el primer precio visto
// por ítem es el más reciente.
func rank(entries []entity.ActivityEntry) entity.Ranking {
	byItem := make(map[string]*entity.RankedItem)
	priced := make(map[string]bool)
	for _, e := range entries {
		it, ok := byItem[e.Item]
		if !ok {
			it = &entity.RankedItem{Item: e.Item, UnitPrice: decimal.Zero}
			byItem[e.Item] = it
		}
		it.Quantity += ParseQuantity(e.Quantidade)
		if !priced[e.Item] {
			if p, ok := unitPrice(e); ok {
				it.UnitPrice = p
				priced[e.Item] = true
			}
		}
	}

	items := make([]entity.RankedItem, 0, len(byItem))
	for _, it := range byItem {
		items = append(items, *it)
	}
	most := append([]entity.RankedItem(nil), items...)
	sort.Slice(most, func(i, j int) bool {
		if most[i].Quantity != most[j].Quantity {
			return most[i].Quantity > most[j].Quantity
		}
		return most[i].Item < most[j].Item
	})
	least := append([]entity.RankedItem(nil), items...)
	sort.Slice(least, func(i, j int) bool {
		if least[i].Quantity != least[j].Quantity {
			return least[i].Quantity < least[j].Quantity
		}
		return least[i].Item < least[j].Item
	})
	return entity.Ranking{Most: top(most), Least: top(least)}
}

func (uc *UseCase) locationValue(ctx context.Context, valuer repository.StockValuer, l inv.Location) (entity.LocationValue, error) {
	lv := entity.LocationValue{Location: string(l.Key), TotalValue: decimal.Zero}
	if valuer != nil {
		v, err := valuer.Valuation(ctx, l.Collection)
		if err != nil {
			return lv, domain.StoreFailure("valorizar "+l.Collection, err)
		}
		lv.Products, lv.Quantity, lv.TotalValue = v.Batches, v.Quantity, v.TotalValue
		return lv, nil
	}

	recs, err := uc.store.ListAll(ctx, l.Collection)
	if err != nil {
		return lv, domain.StoreFailure("listar "+l.Collection, err)
	}
	for _, r := range recs {
		p, err := entity.ProductFromFields(r.ID, r.Fields)
		if err != nil {
			uc.logger.WithContext(ctx).Warn().Err(err).Str("id", r.ID).Str("coleccion", l.Collection).
				Msg("documento ignorado en el reporte")
			continue
		}
		lv.Products++
		lv.Quantity += p.Quantidade
		lv.TotalValue = lv.TotalValue.Add(p.TotalValue())
	}
	return lv, nil
}

func top(items []entity.RankedItem) []entity.RankedItem {
	if len(items) > TopN {
		return items[:TopN]
	}
	return items
}

func unitPrice(e entity.ActivityEntry) (decimal.Decimal, bool) {
	for _, key := range []string{"valorUnitario", entity.FieldValor} {
		v, ok := e.Detalhes[key]
		if !ok || v == nil {
			continue
		}
		if d, err := entity.ToDecimal(v); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// ParseQuantity lee la cantidad de un registro como entero: prefijo numérico de un texto,
// parte entera de un número; ausente o ilegible cuenta 0.
func ParseQuantity(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case decimal.Decimal:
		return n.IntPart()
	case json.Number:
		return leadingInt(n.String())
	case string:
		return leadingInt(n)
	}
	return 0
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// GenerateCached sirve la instantánea en caché salvo que refresh sea true o no haya caché.
// Los fallos de la caché sólo se registran.
func (uc *UseCase) GenerateCached(ctx context.Context, refresh bool) (*entity.Report, error) {
	if uc.cache != nil && !refresh {
		cached, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.WithContext(ctx).Warn().Err(err).Msg("leer reporte en caché")
		} else if cached != nil {
			return cached, nil
		}
	}
	r, err := uc.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, r); err != nil {
			uc.logger.WithContext(ctx).Warn().Err(err).Msg("guardar reporte en caché")
		}
	}
	return r, nil
}

// Refresh regenera y guarda la instantánea; a diferencia de GenerateCached, un fallo de la caché se devuelve.
func (uc *UseCase) Refresh(ctx context.Context) (*entity.Report, error) {
	r, err := uc.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}
