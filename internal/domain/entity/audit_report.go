package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenderTotal neto cobrado por una forma de pago en el turno.
type TenderTotal struct {
	Method string
	Amount decimal.Decimal
	IsCash bool
}

// AuditReport (Z-report) resumen inmutable del cierre de un turno.
// Incluye las cuentas agregadas para que el cierre pueda re-verificarse de forma independiente.
type AuditReport struct {
	ShiftID             string
	UnitID              string
	OpenedBy            string
	ClosedBy            string
	OpenedAt            time.Time
	ClosedAt            time.Time
	OpeningFloat        decimal.Decimal
	TenderBreakdown     []TenderTotal // ordenado por forma de pago
	CashTotal           decimal.Decimal
	ExpectedCash        decimal.Decimal
	DeclaredCash        decimal.Decimal
	CashVariance        decimal.Decimal // negativo = faltante, positivo = sobrante
	NetRevenue          decimal.Decimal
	SettledTicketIDs    []string
	UntenderedTicketIDs []string
	Digest              string // código de verificación de las cifras
}

// VarianceKind clasifica la diferencia de caja.
func (r *AuditReport) VarianceKind() string {
	switch r.CashVariance.Sign() {
	case -1:
		return "shortage"
	case 1:
		return "overage"
	default:
		return "exact"
	}
}
