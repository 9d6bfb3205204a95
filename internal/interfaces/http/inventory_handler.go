package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/application/inventory"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc  *inventory.UseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// RegisterEntry godoc
// @Summary      Registrar entrada de stock (producción o compra)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "product_id, quantity, note"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.ReceiveEntry(c.UserContext(), inventory.MovementInput{
		UnitID:    GetUnitID(c),
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Note:      in.Note,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// RegisterDiscard godoc
// @Summary      Registrar baja (pérdida, vencimiento)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "product_id, quantity, note (motivo obligatorio)"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse  "sin motivo o supera el saldo"
// @Router       /api/inventory/discards [post]
func (h *InventoryHandler) RegisterDiscard(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.DiscardStock(c.UserContext(), inventory.MovementInput{
		UnitID:    GetUnitID(c),
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Note:      in.Note,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// Transfer godoc
// @Summary      Transferir stock a otra unidad
// @Description  Registra la salida en la unidad del operador y la entrada en la unidad destino, con referencias cruzadas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "to_unit_id, product_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      503   {object}  dto.ErrorResponse  "segunda pata no registrada"
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	tr, err := h.uc.ReceiveTransfer(c.UserContext(), inventory.TransferInput{
		FromUnitID: GetUnitID(c),
		ToUnitID:   in.ToUnitID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		Note:       in.Note,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(tr))
}

// ListBalances godoc
// @Summary      Saldos de la unidad
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockBalanceResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	list, err := h.uc.ListBalances(c.UserContext(), GetUnitID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockBalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.StockBalanceResponse{ProductID: b.ProductID, Quantity: b.Quantity, UpdatedAt: b.UpdatedAt})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de la unidad
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        kind        query  string  false  "entry|sale|discard|transfer_in|transfer_out"
// @Param        from        query  string  false  "RFC3339, inclusivo"
// @Param        to          query  string  false  "RFC3339, exclusivo"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListRequest
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	f := entity.MovementFilter{
		UnitID:    GetUnitID(c),
		ProductID: q.ProductID,
		Kind:      q.Kind,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	var err error
	if f.From, err = parseTime("from", q.From); err != nil {
		return writeError(c, h.log, err)
	}
	if f.To, err = parseTime("to", q.To); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponses(list))
}

// Consistency godoc
// @Summary      Verificar saldos contra la suma de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ConsistencyResponse
// @Router       /api/inventory/consistency [get]
func (h *InventoryHandler) Consistency(c *fiber.Ctx) error {
	unitID := GetUnitID(c)
	issues, err := h.uc.CheckConsistency(c.UserContext(), unitID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ConsistencyResponse{UnitID: unitID, Consistent: len(issues) == 0, Discrepancies: []dto.DiscrepancyResponse{}}
	for _, d := range issues {
		out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse{ProductID: d.ProductID, Balance: d.Balance, MovementTotal: d.MovementTotal})
	}
	return c.JSON(out)
}

func parseTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.Invalid(field, "formato RFC3339 esperado")
	}
	return &t, nil
}
