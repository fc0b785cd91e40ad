package http

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/csvimport"
)

// ImportHandler importación de lotes desde CSV (protegido).
type ImportHandler struct {
	uc *inventory.ImportUseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *inventory.ImportUseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Preview godoc
// @Summary      Previsualizar un CSV
// @Description  Devuelve encabezados, mapeo sugerido (o el enviado) y las primeras filas convertidas.
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "Archivo CSV"
// @Param        mapping  formData  string  false  "Mapeo campo->encabezado en JSON"
// @Success      200  {object}  dto.ImportPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/imports/preview [post]
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	table, _, err := readUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	m, err := resolveMapping(c.FormValue("mapping"), table.Headers)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ImportPreviewResponse{
		Headers:   table.Headers,
		Mapping:   m,
		Fields:    inventory.ImportFields,
		TotalRows: len(table.Rows),
	}
	for _, r := range h.uc.Preview(table.Rows, m) {
		out.Rows = append(out.Rows, toImportRow(r))
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar un CSV en un local
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Archivo CSV"
// @Param        location  formData  string  true   "Local de destino"
// @Param        mapping   formData  string  false  "Mapeo campo->encabezado en JSON"
// @Success      200  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ImportResponse
// @Router       /api/imports [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	table, filename, err := readUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	m, err := resolveMapping(c.FormValue("mapping"), table.Headers)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.Import(c.UserContext(), GetActor(c), c.FormValue("location"), filename, table.Rows, m)
	if res == nil {
		return respondError(c, err)
	}

	out := dto.ImportResponse{
		Location:   res.Location,
		Total:      res.Total,
		Imported:   len(res.Imported),
		Failed:     make([]dto.ImportRowResponse, 0, len(res.Failed)),
		LogWarning: logWarning(res.Log),
	}
	for _, r := range res.Failed {
		out.Failed = append(out.Failed, toImportRow(r))
	}
	if err != nil {
		// importación parcial: se informa lo que entró
		status, _ := errorStatus(err)
		out.Error = "importación interrumpida por un fallo del almacén"
		return c.Status(status).JSON(out)
	}
	return c.JSON(out)
}

func readUpload(c *fiber.Ctx) (*csvimport.Table, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", domain.Invalid("file", "archivo CSV requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", domain.Invalid("file", "no se pudo leer el archivo")
	}
	defer f.Close()
	table, err := csvimport.Parse(f)
	switch {
	case errors.Is(err, csvimport.ErrEmpty):
		return nil, "", domain.Invalid("file", "archivo vacío")
	case errors.Is(err, csvimport.ErrTooLarge):
		return nil, "", domain.Invalid("file", "archivo demasiado grande")
	case err != nil:
		return nil, "", domain.Invalid("file", err.Error())
	}
	return table, fh.Filename, nil
}

// resolveMapping usa el mapeo enviado o, si no hay, el sugerido a partir de los encabezados.
func resolveMapping(raw string, headers []string) (inventory.Mapping, error) {
	if raw == "" {
		return inventory.SuggestMapping(headers), nil
	}
	var m inventory.Mapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, domain.Invalid("mapping", "JSON inválido")
	}
	for field, header := range m {
		if !slices.Contains(inventory.ImportFields, field) {
			return nil, domain.Invalid("mapping", "campo desconocido: "+field)
		}
		if header == "" {
			delete(m, field)
			continue
		}
		if !slices.Contains(headers, header) {
			return nil, domain.Invalid("mapping", "encabezado inexistente: "+header)
		}
	}
	return m, nil
}

func toImportRow(r inventory.RowResult) dto.ImportRowResponse {
	out := dto.ImportRowResponse{Line: r.Line, Product: toProductResponse(r.Product)}
	if r.Err != nil {
		out.Error = inventory.RowErrorMessage(r.Err)
	}
	return out
}
