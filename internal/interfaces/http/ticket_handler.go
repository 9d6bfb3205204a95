package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/application/order"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// TicketHandler maneja las cuentas (comandas) y sus ítems (protegido).
type TicketHandler struct {
	uc  *order.UseCase
	log *logger.Logger
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *order.UseCase, log *logger.Logger) *TicketHandler {
	return &TicketHandler{uc: uc, log: log}
}

// Open godoc
// @Summary      Abrir cuenta de balcón o de mesa
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.OpenTicketRequest  true  "kind (counter|table), table_ref"
// @Success      201   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "mesa con cuenta abierta"
// @Router       /api/tickets [post]
func (h *TicketHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.uc.OpenTicket(c.UserContext(), order.OpenInput{
		UnitID:   GetUnitID(c),
		Kind:     in.Kind,
		TableRef: in.TableRef,
		OpenedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTicketResponse(t))
}

// ListOpen godoc
// @Summary      Cuentas abiertas de la unidad
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TicketResponse
// @Router       /api/tickets [get]
func (h *TicketHandler) ListOpen(c *fiber.Ctx) error {
	list, err := h.uc.ListOpenTickets(c.UserContext(), GetUnitID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.TicketResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTicketResponse(t))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Cuenta con sus ítems
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la cuenta"
// @Success      200  {object}  dto.TicketResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	t, err := h.owned(c.UserContext(), c.Params("id"), GetUnitID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTicketResponse(t))
}

// AddItem godoc
// @Summary      Agregar ítem a la cuenta
// @Description  Cantidades enteras para productos por unidad; kg (hasta 3 decimales) para productos por peso.
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la cuenta"
// @Param        body  body      dto.AddItemRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "cuenta cerrada"
// @Router       /api/tickets/{id}/items [post]
func (h *TicketHandler) AddItem(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	if _, err := h.uc.AddLineItem(c.UserContext(), order.AddItemInput{
		TicketID:  id,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		EnteredBy: GetUserID(c),
	}); err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.GetTicket(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTicketResponse(t))
}

// RemoveItem godoc
// @Summary      Quitar un ítem (la cuenta sin ítems queda cancelada)
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        itemId  path      string  true  "ID del ítem"
// @Success      200     {object}  dto.TicketResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/tickets/items/{itemId} [delete]
func (h *TicketHandler) RemoveItem(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	item, err := h.uc.GetLineItem(c.UserContext(), itemID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if _, err := h.owned(c.UserContext(), item.TicketID, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.RemoveLineItem(c.UserContext(), itemID, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTicketResponse(t))
}

// RequestSettlement marca "pidió la cuenta".
func (h *TicketHandler) RequestSettlement(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.RequestSettlement(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTicketResponse(t))
}

// SetServiceCharge cambia el porcentaje de servicio de una cuenta de mesa.
func (h *TicketHandler) SetServiceCharge(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ServiceChargeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.SetServiceCharge(c.UserContext(), id, in.Percent)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTicketResponse(t))
}

func (h *TicketHandler) owned(ctx context.Context, id, unitID string) (*entity.Ticket, error) {
	t, err := h.uc.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UnitID != unitID {
		return nil, fmt.Errorf("cuenta %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}
