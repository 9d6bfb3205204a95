package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/inventory"
	"github.com/ricazo/pos-engine/internal/application/order"
	"github.com/ricazo/pos-engine/internal/application/payment"
	"github.com/ricazo/pos-engine/internal/application/shift"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ShiftUC     *shift.UseCase
	OrderUC     *order.UseCase
	PaymentUC   *payment.UseCase
	InventoryUC *inventory.UseCase
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token con operador y unidad.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.Component("http")
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	shiftHandler := NewShiftHandler(deps.ShiftUC, log)
	ticketHandler := NewTicketHandler(deps.OrderUC, log)
	paymentHandler := NewPaymentHandler(deps.PaymentUC, deps.OrderUC, log)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, log)

	api.Get("/payment-methods", paymentHandler.ListMethods)

	// Turnos de caja
	shifts := api.Group("/shifts")
	shifts.Post("/", shiftHandler.Open)
	shifts.Get("/", shiftHandler.List)
	shifts.Get("/current", shiftHandler.Current)
	shifts.Post("/:id/close-request", shiftHandler.RequestClose)
	shifts.Post("/:id/close", shiftHandler.Close)
	shifts.Get("/:id/report.pdf", shiftHandler.ReportPDF)
	shifts.Get("/:id/report", shiftHandler.Report)

	// Cuentas; /items/:itemId antes de /:id para que no lo capture.
	tickets := api.Group("/tickets")
	tickets.Post("/", ticketHandler.Open)
	tickets.Get("/", ticketHandler.ListOpen)
	tickets.Delete("/items/:itemId", ticketHandler.RemoveItem)
	tickets.Get("/:id", ticketHandler.Get)
	tickets.Post("/:id/items", ticketHandler.AddItem)
	tickets.Post("/:id/request-settlement", ticketHandler.RequestSettlement)
	tickets.Put("/:id/service-charge", ticketHandler.SetServiceCharge)
	tickets.Post("/:id/quote", paymentHandler.Quote)
	tickets.Post("/:id/finalize", paymentHandler.Finalize)

	// Inventario
	inv := api.Group("/inventory")
	inv.Post("/entries", inventoryHandler.RegisterEntry)
	inv.Post("/discards", inventoryHandler.RegisterDiscard)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/consistency", inventoryHandler.Consistency)
}
