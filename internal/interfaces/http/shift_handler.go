package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/application/shift"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// ShiftHandler maneja apertura, cierre y Z-report de los turnos de caja (protegido).
type ShiftHandler struct {
	uc  *shift.UseCase
	log *logger.Logger
}

// NewShiftHandler construye el handler.
func NewShiftHandler(uc *shift.UseCase, log *logger.Logger) *ShiftHandler {
	return &ShiftHandler{uc: uc, log: log}
}

// Open godoc
// @Summary      Abrir turno de caja
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.OpenShiftRequest  true  "opening_float"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sh, err := h.uc.OpenShift(c.UserContext(), shift.OpenInput{
		UnitID:       GetUnitID(c),
		OpenedBy:     GetUserID(c),
		OpeningFloat: in.OpeningFloat,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShiftResponse(sh))
}

// List godoc
// @Summary      Turnos de la unidad (el más reciente primero)
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "máximo 100"
// @Param        offset  query     int  false  "desplazamiento"
// @Success      200     {object}  dto.ShiftListResponse
// @Router       /api/shifts [get]
func (h *ShiftHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	list, err := h.uc.ListShifts(c.UserContext(), GetUnitID(c), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.ShiftResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toShiftResponse(s))
	}
	return c.JSON(dto.ShiftListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Current godoc
// @Summary      Turno abierto de la unidad
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/current [get]
func (h *ShiftHandler) Current(c *fiber.Ctx) error {
	sh, err := h.uc.CurrentShift(c.UserContext(), GetUnitID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toShiftResponse(sh))
}

// RequestClose godoc
// @Summary      Iniciar el arqueo (no se liquidan más cuentas)
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del turno"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close-request [post]
func (h *ShiftHandler) RequestClose(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	sh, err := h.uc.RequestClose(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toShiftResponse(sh))
}

// Close godoc
// @Summary      Cerrar turno con el conteo ciego
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "ID del turno"
// @Param        body  body      dto.CloseShiftRequest  true  "declared_cash"
// @Success      200   {object}  dto.AuditReportResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.CloseShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	rep, err := h.uc.CloseShift(c.UserContext(), shift.CloseInput{ShiftID: id, DeclaredCash: in.DeclaredCash, ClosedBy: GetUserID(c)})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReportResponse(rep))
}

// Report godoc
// @Summary      Z-report de un turno cerrado
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del turno"
// @Success      200  {object}  dto.AuditReportResponse
// @Failure      409  {object}  dto.ErrorResponse  "turno aún abierto"
// @Router       /api/shifts/{id}/report [get]
func (h *ShiftHandler) Report(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	rep, err := h.uc.GetReport(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReportResponse(rep))
}

// ReportPDF godoc
// @Summary      Z-report imprimible
// @Tags         shifts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del turno"
// @Success      200  {file}  binary
// @Router       /api/shifts/{id}/report.pdf [get]
func (h *ShiftHandler) ReportPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.RenderReportPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="fechamento-%s.pdf"`, id))
	return c.Send(doc)
}

// owned devuelve el turno solo si pertenece a la unidad del token; si no, responde como inexistente.
func (h *ShiftHandler) owned(ctx context.Context, id, unitID string) (*entity.Shift, error) {
	sh, err := h.uc.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.UnitID != unitID {
		return nil, fmt.Errorf("turno %s: %w", id, domain.ErrNotFound)
	}
	return sh, nil
}
