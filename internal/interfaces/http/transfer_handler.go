package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
)

// TransferHandler transferencias entre locales (protegido).
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Transfer godoc
// @Summary      Transferir cantidad de un lote a otro local
// @Description  Fusiona con un lote equivalente del destino o crea uno nuevo. Si el origen queda en 0 se elimina.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Transferencia"
// @Success      200  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Execute(c.UserContext(), GetActor(c), inventory.TransferInput{
		SourceLocation:      req.SourceLocation,
		DestinationLocation: req.DestinationLocation,
		SourceID:            req.ProductID,
		Quantity:            req.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransferResponse{
		Source:        toProductResponse(res.Source),
		SourceDeleted: res.SourceDeleted,
		Destination:   toProductResponse(res.Destination),
		Merged:        res.Merged,
		LogID:         res.Log.ID,
		LogWarning:    logWarning(res.Log),
	})
}
