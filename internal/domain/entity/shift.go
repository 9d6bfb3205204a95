package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del turno de caja.
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// Shift representa un turno de caja (período de apertura a cierre de la gaveta) de una unidad.
// Como máximo un turno abierto por unidad. Solo CloseShift lo modifica; nunca se borra.
type Shift struct {
	ID           string
	UnitID       string
	OpenedBy     string
	OpenedAt     time.Time
	OpeningFloat decimal.Decimal // fondo de caja inicial
	Status       string

	// CloseRequestedAt marca el inicio del arqueo: desde ahí no se liquidan más cuentas.
	CloseRequestedAt *time.Time

	ClosedBy         string
	ClosedAt         *time.Time
	DeclaredCash     *decimal.Decimal // conteo ciego del operador
	ExpectedCash     *decimal.Decimal // fondo + efectivo neto del sistema
	CashVariance     *decimal.Decimal // declarado - esperado
	NetRevenue       *decimal.Decimal
	TenderBreakdown  map[string]decimal.Decimal // forma de pago -> neto (valor - cambio)
	SettledTicketIDs []string
	// UntenderedTicketIDs cuentas cerradas sin pagos registrados que se sumaron por su total.
	UntenderedTicketIDs []string
}

// IsOpen indica si el turno sigue abierto.
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

// AcceptsSettlement indica si la caja puede liquidar cuentas en este turno.
func (s *Shift) AcceptsSettlement() bool {
	return s.IsOpen() && s.CloseRequestedAt == nil
}
