package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
)

// ProductHandler lotes por local (protegido).
type ProductHandler struct {
	catalog *inv.Catalog
	uc      *inventory.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(catalog *inv.Catalog, uc *inventory.ProductUseCase) *ProductHandler {
	return &ProductHandler{catalog: catalog, uc: uc}
}

// Locations godoc
// @Summary      Listar locales de stock
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *ProductHandler) Locations(c *fiber.Ctx) error {
	locs := h.catalog.Locations()
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{Key: string(l.Key), Name: l.DisplayName, Collection: l.Collection})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lotes de un local
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        location   path   string  true   "Local (principal, vet, internacao, reposicao)"
// @Param        q          query  string  false  "Busca por nome"
// @Param        categoria  query  string  false  "Categoria"
// @Success      200  {object}  dto.ProductListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/locations/{location}/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	location := c.Params("location")
	items, err := h.uc.List(c.UserContext(), location, inventory.ProductFilter{
		Search:    c.Query("q"),
		Categoria: c.Query("categoria"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductListResponse{Location: location, Items: toProductList(items), Total: len(items)})
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Local"
// @Param        id        path  string  true  "ID del lote"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{location}/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("location"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductResponse(p))
}

// Create godoc
// @Summary      Crear lote
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        location  path  string              true  "Local"
// @Param        body      body  dto.ProductRequest  true  "Datos del lote"
// @Success      201  {object}  dto.ProductMutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/locations/{location}/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in, err := toProductInput(req)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.Create(c.UserContext(), GetActor(c), c.Params("location"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductMutationResponse{
		Product:    toProductResponse(res.Product),
		LogWarning: logWarning(res.Log),
	})
}

// Update godoc
// @Summary      Actualizar lote
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        location  path  string              true  "Local"
// @Param        id        path  string              true  "ID del lote"
// @Param        body      body  dto.ProductRequest  true  "Datos del lote"
// @Success      200  {object}  dto.ProductMutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{location}/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in, err := toProductInput(req)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("location"), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductMutationResponse{
		Product:    toProductResponse(res.Product),
		LogWarning: logWarning(res.Log),
	})
}

// Delete godoc
// @Summary      Eliminar lote
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Local"
// @Param        id        path  string  true  "ID del lote"
// @Success      200  {object}  dto.ProductMutationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{location}/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	res, err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("location"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductMutationResponse{
		Product:    toProductResponse(res.Product),
		LogWarning: logWarning(res.Log),
	})
}

// Summary godoc
// @Summary      Resumen de un local
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Local"
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/locations/{location}/summary [get]
func (h *ProductHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.Summary(c.UserContext(), c.Params("location"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SummaryResponse{
		Location:     string(s.Location.Key),
		Name:         s.Location.DisplayName,
		TotalBatches: s.TotalBatches,
		TotalItems:   s.TotalItems,
		TotalValue:   s.TotalValue,
		LowStock:     toProductList(s.LowStock),
		Threshold:    s.Threshold,
	}
	for _, ct := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, dto.CategoryTotalResponse{Categoria: string(ct.Categoria), Quantidade: ct.Quantidade})
	}
	return c.JSON(out)
}
