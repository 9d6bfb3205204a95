package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenderRequest pago propuesto.
type TenderRequest struct {
	MethodID string          `json:"method_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// SettleRequest pagos en el orden en que la caja los recibió.
type SettleRequest struct {
	Tenders []TenderRequest `json:"tenders"`
}

// SettlementStateResponse cotización: cuánto se debe, cuánto se recibió y el cambio.
type SettlementStateResponse struct {
	Due         decimal.Decimal `json:"due"`
	Tendered    decimal.Decimal `json:"tendered"`
	Balance     decimal.Decimal `json:"balance"`
	Change      decimal.Decimal `json:"change"`
	Status      string          `json:"status"`
	CanFinalize bool            `json:"can_finalize"`
}

// TenderResponse pago persistido.
type TenderResponse struct {
	ID          string          `json:"id"`
	MethodID    string          `json:"method_id"`
	MethodName  string          `json:"method_name"`
	Amount      decimal.Decimal `json:"amount"`
	ChangeGiven decimal.Decimal `json:"change_given"`
	CollectedBy string          `json:"collected_by"`
	CollectedAt time.Time       `json:"collected_at"`
}

// SettlementResponse resultado de la liquidación.
type SettlementResponse struct {
	Ticket    TicketResponse          `json:"ticket"`
	Tenders   []TenderResponse        `json:"tenders"`
	Movements []StockMovementResponse `json:"movements"`
	State     SettlementStateResponse `json:"state"`
}

// PaymentMethodResponse forma de pago.
type PaymentMethodResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// InsufficientFundsResponse error 422 con las cifras para la caja.
type InsufficientFundsResponse struct {
	ErrorResponse
	Due      decimal.Decimal `json:"due"`
	Tendered decimal.Decimal `json:"tendered"`
	Missing  decimal.Decimal `json:"missing"`
}
