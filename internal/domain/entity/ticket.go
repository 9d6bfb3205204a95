package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cuenta (venda).
const (
	TicketKindCounter = "counter" // balcão
	TicketKindTable   = "table"   // mesa
)

// Estados de la cuenta.
const (
	TicketStatusOpen      = "open"
	TicketStatusClosed    = "closed"
	TicketStatusCancelled = "cancelled"
)

// Ticket representa una cuenta (de mesa o de balcón) que acumula ítems hasta liquidarse o cancelarse.
type Ticket struct {
	ID                   string
	UnitID               string
	Kind                 string
	TableRef             string
	Status               string
	OpenedBy             string
	OpenedAt             time.Time
	ServiceChargePercent decimal.Decimal
	Subtotal             decimal.Decimal // Σ line_total
	ServiceCharge        decimal.Decimal // Subtotal × porcentaje / 100
	Total                decimal.Decimal // Subtotal + ServiceCharge
	ClosedAt             *time.Time
	ClosedBy             string

	// RequestedSettlement es solo un aviso para la caja; no bloquea ediciones.
	RequestedSettlement   bool
	SettlementRequestedAt *time.Time

	Items []LineItem
}

// IsOpen indica si la cuenta admite cambios.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// Recalculate recalcula subtotal, tasa de servicio y total a partir de los ítems.
func (t *Ticket) Recalculate() {
	subtotal := decimal.Zero
	for _, it := range t.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	t.Subtotal = subtotal
	t.ServiceCharge = ServiceChargeFor(subtotal, t.ServiceChargePercent)
	t.Total = t.Subtotal.Add(t.ServiceCharge)
}

// ItemIndex devuelve la posición del ítem con ese id o -1.
func (t *Ticket) ItemIndex(itemID string) int {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ServiceChargeFor calcula la tasa de servicio redondeada a centavos.
func ServiceChargeFor(subtotal, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// LineItem es una línea de la cuenta. El precio unitario se captura al momento de la entrada.
type LineItem struct {
	ID          string
	TicketID    string
	ProductID   string
	PricingMode string
	Quantity    decimal.Decimal // entero para precio por unidad, fracción (kg) para precio por peso
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	EnteredBy   string
	EnteredAt   time.Time
}

// LineTotalFor calcula quantity × unit_price redondeado a centavos.
func LineTotalFor(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}
