package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenTicketRequest abre una cuenta de balcón o de mesa.
type OpenTicketRequest struct {
	Kind     string `json:"kind"`
	TableRef string `json:"table_ref"`
}

// AddItemRequest cantidad entera para productos por unidad; kg para productos por peso.
type AddItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ServiceChargeRequest porcentaje de la tasa de servicio (0 la quita).
type ServiceChargeRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

// LineItemResponse línea de la cuenta.
type LineItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	PricingMode string          `json:"pricing_mode"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	EnteredBy   string          `json:"entered_by"`
	EnteredAt   time.Time       `json:"entered_at"`
}

// TicketResponse cuenta con sus ítems y totales.
type TicketResponse struct {
	ID                    string             `json:"id"`
	UnitID                string             `json:"unit_id"`
	Kind                  string             `json:"kind"`
	TableRef              string             `json:"table_ref,omitempty"`
	Status                string             `json:"status"`
	OpenedBy              string             `json:"opened_by"`
	OpenedAt              time.Time          `json:"opened_at"`
	ServiceChargePercent  decimal.Decimal    `json:"service_charge_percent"`
	Subtotal              decimal.Decimal    `json:"subtotal"`
	ServiceCharge         decimal.Decimal    `json:"service_charge"`
	Total                 decimal.Decimal    `json:"total"`
	RequestedSettlement   bool               `json:"requested_settlement"`
	SettlementRequestedAt *time.Time         `json:"settlement_requested_at,omitempty"`
	ClosedBy              string             `json:"closed_by,omitempty"`
	ClosedAt              *time.Time         `json:"closed_at,omitempty"`
	Items                 []LineItemResponse `json:"items"`
}
