package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod forma de pago habilitada (dinheiro, pix, crédito, débito...).
type PaymentMethod struct {
	ID     string
	Name   string
	Active bool
}

// Tender representa un pago aplicado a una cuenta. Se crea solo al liquidar y nunca se modifica.
type Tender struct {
	ID          string
	TicketID    string
	MethodID    string
	MethodName  string
	Amount      decimal.Decimal
	ChangeGiven decimal.Decimal // solo > 0 en formas de pago en efectivo
	CollectedBy string
	CollectedAt time.Time
}

// Net importe que efectivamente queda en caja (valor - cambio).
func (t *Tender) Net() decimal.Decimal {
	return t.Amount.Sub(t.ChangeGiven)
}
