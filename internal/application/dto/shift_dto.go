package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenShiftRequest apertura de caja con el fondo de cambio.
type OpenShiftRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// CloseShiftRequest cierre con el conteo ciego del operador.
type CloseShiftRequest struct {
	DeclaredCash decimal.Decimal `json:"declared_cash"`
}

// ShiftResponse turno de caja.
type ShiftResponse struct {
	ID                  string                     `json:"id"`
	UnitID              string                     `json:"unit_id"`
	Status              string                     `json:"status"`
	OpenedBy            string                     `json:"opened_by"`
	OpenedAt            time.Time                  `json:"opened_at"`
	OpeningFloat        decimal.Decimal            `json:"opening_float"`
	CloseRequestedAt    *time.Time                 `json:"close_requested_at,omitempty"`
	ClosedBy            string                     `json:"closed_by,omitempty"`
	ClosedAt            *time.Time                 `json:"closed_at,omitempty"`
	DeclaredCash        *decimal.Decimal           `json:"declared_cash,omitempty"`
	ExpectedCash        *decimal.Decimal           `json:"expected_cash,omitempty"`
	CashVariance        *decimal.Decimal           `json:"cash_variance,omitempty"`
	NetRevenue          *decimal.Decimal           `json:"net_revenue,omitempty"`
	TenderBreakdown     map[string]decimal.Decimal `json:"tender_breakdown,omitempty"`
	SettledTicketIDs    []string                   `json:"settled_ticket_ids,omitempty"`
	UntenderedTicketIDs []string                   `json:"untendered_ticket_ids,omitempty"`
}

// ShiftListResponse listado paginado de turnos.
type ShiftListResponse struct {
	Items []ShiftResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// TenderTotalDTO neto por forma de pago.
type TenderTotalDTO struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	IsCash bool            `json:"is_cash"`
}

// AuditReportResponse Z-report.
type AuditReportResponse struct {
	ShiftID             string           `json:"shift_id"`
	UnitID              string           `json:"unit_id"`
	OpenedBy            string           `json:"opened_by"`
	ClosedBy            string           `json:"closed_by"`
	OpenedAt            time.Time        `json:"opened_at"`
	ClosedAt            time.Time        `json:"closed_at"`
	OpeningFloat        decimal.Decimal  `json:"opening_float"`
	TenderBreakdown     []TenderTotalDTO `json:"tender_breakdown"`
	CashTotal           decimal.Decimal  `json:"cash_total"`
	ExpectedCash        decimal.Decimal  `json:"expected_cash"`
	DeclaredCash        decimal.Decimal  `json:"declared_cash"`
	CashVariance        decimal.Decimal  `json:"cash_variance"`
	VarianceKind        string           `json:"variance_kind"`
	NetRevenue          decimal.Decimal  `json:"net_revenue"`
	SettledTicketIDs    []string         `json:"settled_ticket_ids"`
	UntenderedTicketIDs []string         `json:"untendered_ticket_ids,omitempty"`
	Digest              string           `json:"digest"`
}
