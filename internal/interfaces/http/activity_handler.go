package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// ActivityReader lectura de los registros más recientes.
type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]entity.ActivityEntry, error)
}

// ActivityHandler listado de la bitácora (protegido).
type ActivityHandler struct {
	log   ActivityReader
	names activity.Namer
}

// NewActivityHandler construye el handler.
func NewActivityHandler(log ActivityReader, names activity.Namer) *ActivityHandler {
	return &ActivityHandler{log: log, names: names}
}

// List godoc
// @Summary      Registros de actividad recientes
// @Tags         activity
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int     false  "Máximo de registros"  default(100)
// @Param        q      query  string  false  "Filtro por item, usuario o mensaje"
// @Success      200  {object}  dto.ActivityListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/activity [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", activity.DefaultLimit)
	if limit <= 0 {
		limit = activity.DefaultLimit
	}
	if limit > activity.MaxLimit {
		limit = activity.MaxLimit
	}
	entries, err := h.log.Recent(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	items := make([]dto.ActivityResponse, 0, len(entries))
	for i := range entries {
		r := toActivityResponse(&entries[i], h.names)
		if q != "" && !matches(q, r.Item, r.UsuarioEmail, r.Mensagem) {
			continue
		}
		items = append(items, r)
	}
	return c.JSON(dto.ActivityListResponse{Items: items, Limit: limit, Total: len(items)})
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
