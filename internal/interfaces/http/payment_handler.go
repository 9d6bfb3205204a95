package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/application/order"
	"github.com/ricazo/pos-engine/internal/application/payment"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// PaymentHandler cotización y liquidación de cuentas (protegido).
type PaymentHandler struct {
	uc      *payment.UseCase
	tickets *TicketHandler
	log     *logger.Logger
}

// NewPaymentHandler construye el handler. orders se usa para verificar que la cuenta sea de la unidad.
func NewPaymentHandler(uc *payment.UseCase, orders *order.UseCase, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, tickets: NewTicketHandler(orders, log), log: log}
}

// ListMethods godoc
// @Summary      Formas de pago activas
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PaymentMethodResponse
// @Router       /api/payment-methods [get]
func (h *PaymentHandler) ListMethods(c *fiber.Ctx) error {
	list, err := h.uc.ListPaymentMethods(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.PaymentMethodResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.PaymentMethodResponse{ID: m.ID, Name: m.Name, Active: m.Active})
	}
	return c.JSON(out)
}

// Quote godoc
// @Summary      Cotizar pagos propuestos (sin persistir)
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID de la cuenta"
// @Param        body  body      dto.SettleRequest  true  "tenders"
// @Success      200   {object}  dto.SettlementStateResponse
// @Router       /api/tickets/{id}/quote [post]
func (h *PaymentHandler) Quote(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.tickets.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	st, err := h.uc.Quote(c.UserContext(), id, toTenderInputs(in.Tenders))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStateResponse(st))
}

// Finalize godoc
// @Summary      Liquidar la cuenta
// @Description  Registra los pagos, asigna el cambio a las formas de pago en efectivo, descuenta el stock y cierra la cuenta en una sola transacción.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID de la cuenta"
// @Param        body  body      dto.SettleRequest  true  "tenders"
// @Success      201   {object}  dto.SettlementResponse
// @Failure      409   {object}  dto.ErrorResponse  "cuenta ya cerrada o sin turno abierto"
// @Failure      422   {object}  dto.InsufficientFundsResponse
// @Router       /api/tickets/{id}/finalize [post]
func (h *PaymentHandler) Finalize(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.tickets.owned(c.UserContext(), id, GetUnitID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.uc.Finalize(c.UserContext(), payment.FinalizeInput{
		TicketID:    id,
		Tenders:     toTenderInputs(in.Tenders),
		CollectedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSettlementResponse(res))
}

func toTenderInputs(in []dto.TenderRequest) []payment.TenderInput {
	out := make([]payment.TenderInput, 0, len(in))
	for _, t := range in {
		out = append(out, payment.TenderInput{MethodID: t.MethodID, Amount: t.Amount})
	}
	return out
}
