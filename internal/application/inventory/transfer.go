package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/estoque-vet/inventory")

// TransferInput entrada de una transferencia entre locales.
type TransferInput struct {
	SourceLocation      string
	DestinationLocation string
	SourceID            string
	Quantity            int64
}

// TransferResult estado final de ambos lados más el resultado del registro de actividad.
type TransferResult struct {
	Source        *entity.Product // nil si el lote de origen se eliminó
	SourceDeleted bool
	Destination   *entity.Product
	Merged        bool
	Log           activity.AppendOutcome
}

// TransferUseCase mueve cantidad de un lote a otro local, fusionando con un lote equivalente
// del destino o creando uno nuevo. Todo el leer-verificar-escribir ocurre en una sola transacción.
type TransferUseCase struct {
	catalog *inv.Catalog
	tx      TxRunner
	log     ActivityLog
	metrics Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// NewTransferUseCase construye el caso de uso. metrics y lg pueden ser nil.
func NewTransferUseCase(catalog *inv.Catalog, tx TxRunner, log ActivityLog, metrics Recorder, lg *logger.Logger) *TransferUseCase {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if lg == nil {
		lg = logger.Nop()
	}
	return &TransferUseCase{catalog: catalog, tx: tx, log: log, metrics: metrics, logger: lg, now: time.Now}
}

// Execute no es idempotente: repetir una transferencia ya aplicada falla con
// ErrInsufficientQuantity o ErrNotFound.
func (uc *TransferUseCase) Execute(ctx context.Context, actor entity.Actor, in TransferInput) (*TransferResult, error) {
	ctx, span := tracer.Start(ctx, "inventory.transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("transfer.source", in.SourceLocation),
		attribute.String("transfer.destination", in.DestinationLocation),
		attribute.Int64("transfer.quantity", in.Quantity),
	)

	res, err := uc.execute(ctx, actor, in)
	uc.metrics.TransferFinished(resultLabel(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transferencia fallida")
		return nil, err
	}
	return res, nil
}

func (uc *TransferUseCase) execute(ctx context.Context, actor entity.Actor, in TransferInput) (*TransferResult, error) {
	src, dst, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	res := &TransferResult{}
	var moved *entity.Product

	err = uc.tx.Run(ctx, func(store repository.RecordStore) error {
		*res = TransferResult{}
		rec, err := store.Get(ctx, src.Collection, in.SourceID)
		if err != nil {
			return domain.StoreFailure("leer lote de origen", err)
		}
		if rec == nil {
			return fmt.Errorf("lote %s en %s: %w", in.SourceID, src.Key, domain.ErrNotFound)
		}
		source, err := entity.ProductFromFields(rec.ID, rec.Fields)
		if err != nil {
			return err
		}
		if in.Quantity > source.Quantidade {
			return &domain.InsufficientQuantityError{Requested: in.Quantity, Available: source.Quantidade}
		}
		moved = source.Clone()

		dest, merged, err := uc.mergeOrCreate(ctx, store, dst, source, in.Quantity, now)
		if err != nil {
			return err
		}
		res.Destination, res.Merged = dest, merged

		if in.Quantity < source.Quantidade {
			source.Quantidade -= in.Quantity
			source.UpdatedAt = now
			if err := store.Replace(ctx, src.Collection, source.ID, source.Fields()); err != nil {
				return domain.StoreFailure("actualizar lote de origen", err)
			}
			res.Source = source
			return nil
		}
		if err := store.Delete(ctx, src.Collection, source.ID); err != nil {
			return domain.StoreFailure("eliminar lote de origen", err)
		}
		res.SourceDeleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	destKey := string(dst.Key)
	detalhes := map[string]any{
		entity.FieldCategoria: string(moved.Categoria),
		"valorUnitario":       moved.Valor.StringFixed(2),
	}
	if moved.Validade != nil {
		detalhes[entity.FieldValidade] = moved.Validade.Format("02/01/2006")
	}
	res.Log = uc.log.Append(ctx, activity.Entry{
		Actor:      actor,
		Kind:       entity.OpTransferencia,
		Item:       moved.Nome,
		Origem:     string(src.Key),
		Destino:    &destKey,
		Quantidade: in.Quantity,
		Detalhes:   detalhes,
	})
	uc.logger.WithContext(ctx).Info().
		Str("origem", string(src.Key)).
		Str("destino", destKey).
		Str("item", moved.Nome).
		Int64("quantidade", in.Quantity).
		Bool("fusionado", res.Merged).
		Bool("registro_ok", res.Log.OK()).
		Msg("transferencia aplicada")
	return res, nil
}

func (uc *TransferUseCase) validate(in TransferInput) (inv.Location, inv.Location, error) {
	src, err := uc.catalog.Lookup(in.SourceLocation)
	if err != nil {
		return inv.Location{}, inv.Location{}, err
	}
	dst, err := uc.catalog.Lookup(in.DestinationLocation)
	if err != nil {
		return inv.Location{}, inv.Location{}, err
	}
	if src.Key == dst.Key {
		return inv.Location{}, inv.Location{}, domain.Invalid("destination_location", "debe ser distinto del origen")
	}
	if in.SourceID == "" {
		return inv.Location{}, inv.Location{}, domain.Invalid("source_id", "obligatorio")
	}
	if in.Quantity <= 0 {
		return inv.Location{}, inv.Location{}, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	return src, dst, nil
}

// mergeOrCreate suma en el primer lote equivalente del destino; si no hay, o si desapareció
// entre el escaneo y la relectura, inserta un clon del origen con la cantidad transferida.
func (uc *TransferUseCase) mergeOrCreate(
	ctx context.Context,
	store repository.RecordStore,
	dst inv.Location,
	source *entity.Product,
	qty int64,
	now time.Time,
) (*entity.Product, bool, error) {
	recs, err := store.ListAll(ctx, dst.Collection)
	if err != nil {
		return nil, false, domain.StoreFailure("listar destino", err)
	}
	candidates := make([]*entity.Product, 0, len(recs))
	for _, r := range recs {
		p, err := entity.ProductFromFields(r.ID, r.Fields)
		if err != nil {
			uc.logger.WithContext(ctx).Warn().Err(err).Str("id", r.ID).Str("coleccion", dst.Collection).
				Msg("documento del destino ignorado en la búsqueda de coincidencias")
			continue
		}
		candidates = append(candidates, p)
	}

	if match := inv.FindMatch(source, candidates); match != nil {
		fresh, err := store.Get(ctx, dst.Collection, match.ID)
		if err != nil {
			return nil, false, domain.StoreFailure("releer lote de destino", err)
		}
		if fresh != nil {
			target, err := entity.ProductFromFields(fresh.ID, fresh.Fields)
			if err != nil {
				return nil, false, err
			}
			target.Quantidade += qty
			target.UpdatedAt = now
			err = store.Replace(ctx, dst.Collection, target.ID, target.Fields())
			switch {
			case err == nil:
				return target, true, nil
			case !errors.Is(err, domain.ErrNotFound):
				return nil, false, domain.StoreFailure("actualizar lote de destino", err)
			}
		}
	}

	created := source.Clone()
	created.ID = ""
	created.Quantidade = qty
	created.TransferredAt = &now
	id, err := store.Insert(ctx, dst.Collection, created.Fields())
	if err != nil {
		return nil, false, domain.StoreFailure("crear lote de destino", err)
	}
	created.ID = id
	return created, false, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return "insufficient_quantity"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "store_unavailable"
	}
}
