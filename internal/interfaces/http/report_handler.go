package http

import (
	"bytes"
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-vet/internal/application/report"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// ReportRenderer genera el PDF del reporte.
type ReportRenderer interface {
	GenerateReportPDF(ctx context.Context, r *entity.Report) ([]byte, error)
}

// ReportHandler reporte general en JSON, PDF y CSV (protegido).
type ReportHandler struct {
	uc  *report.UseCase
	pdf ReportRenderer
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase, pdf ReportRenderer) *ReportHandler {
	return &ReportHandler{uc: uc, pdf: pdf}
}

func (h *ReportHandler) load(c *fiber.Ctx) (*entity.Report, error) {
	return h.uc.GenerateCached(c.UserContext(), c.QueryBool("refresh", false))
}

// General godoc
// @Summary      Reporte general
// @Description  Rankings de entradas y salidas más valorización por local. refresh=true ignora la caché.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        refresh  query  bool  false  "Regenerar sin caché"
// @Success      200  {object}  entity.Report
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/general [get]
func (h *ReportHandler) General(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

// PDF godoc
// @Summary      Reporte general en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        refresh  query  bool  false  "Regenerar sin caché"
// @Success      200  {file}  binary
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/general.pdf [get]
func (h *ReportHandler) PDF(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.pdf.GenerateReportPDF(c.UserContext(), r)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="relatorio-geral.pdf"`)
	return c.Send(b)
}

// CSV godoc
// @Summary      Reporte general en CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        refresh  query  bool  false  "Regenerar sin caché"
// @Success      200  {file}  binary
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/general.csv [get]
func (h *ReportHandler) CSV(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, r); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="relatorio-geral.csv"`)
	return c.Send(buf.Bytes())
}
