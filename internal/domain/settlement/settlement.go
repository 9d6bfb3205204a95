// Package settlement contiene las reglas puras de cobro de una cuenta: total a pagar,
// saldo pendiente, cambio y su asignación a los pagos en efectivo.
package settlement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// Status estado efímero del cobro.
type Status string

const (
	StatusInsufficient Status = "insufficient"
	StatusExact        Status = "exact"
	StatusOverpaid     Status = "overpaid"
)

// Proposed pago propuesto por la caja antes de finalizar.
type Proposed struct {
	MethodID   string
	MethodName string
	Amount     decimal.Decimal
}

// State foto del cobro para una lista de pagos propuestos.
type State struct {
	Due      decimal.Decimal
	Tendered decimal.Decimal
	Balance  decimal.Decimal // due - tendered; negativo = cambio
	Change   decimal.Decimal
	Status   Status
}

// CanFinalize indica si lo recibido cubre el total.
func (s State) CanFinalize() bool {
	return s.Status != StatusInsufficient
}

// Due calcula Σline_totals × (1 + percent/100), con la tasa redondeada a centavos.
func Due(lines []entity.LineItem, percent decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	return subtotal.Add(entity.ServiceChargeFor(subtotal, percent))
}

// Evaluate calcula saldo y cambio de los pagos propuestos contra due.
func Evaluate(due decimal.Decimal, tenders []Proposed) State {
	tendered := decimal.Zero
	for _, t := range tenders {
		tendered = tendered.Add(t.Amount)
	}
	st := State{Due: due, Tendered: tendered, Balance: due.Sub(tendered), Change: decimal.Zero}
	switch st.Balance.Sign() {
	case 1:
		st.Status = StatusInsufficient
	case 0:
		st.Status = StatusExact
	default:
		st.Status = StatusOverpaid
		st.Change = st.Balance.Neg()
	}
	return st
}

// ValidateTenders rechaza listas vacías, importes no positivos o con más de dos decimales.
func ValidateTenders(tenders []Proposed) error {
	if len(tenders) == 0 {
		return domain.Invalid("tenders", "se requiere al menos un pago")
	}
	for i, t := range tenders {
		field := fmt.Sprintf("tenders[%d]", i)
		if strings.TrimSpace(t.MethodID) == "" {
			return domain.Invalid(field+".method_id", "requerido")
		}
		if !t.Amount.IsPositive() {
			return domain.Invalid(field+".amount", "debe ser mayor que cero")
		}
		if !t.Amount.Equal(t.Amount.Round(2)) {
			return domain.Invalid(field+".amount", "máximo dos decimales")
		}
	}
	return nil
}

// CashClassifier decide si una forma de pago es efectivo: el nombre contiene la etiqueta
// configurada, sin distinguir mayúsculas (plegado Unicode).
type CashClassifier struct {
	label string
}

// NewCashClassifier construye el clasificador para la etiqueta dada (p. ej. "dinheiro").
func NewCashClassifier(label string) *CashClassifier {
	return &CashClassifier{label: fold(strings.TrimSpace(label))}
}

// IsCash indica si methodName corresponde a efectivo.
func (c *CashClassifier) IsCash(methodName string) bool {
	if c.label == "" {
		return false
	}
	return strings.Contains(fold(methodName), c.label)
}

// cases.Caser no es seguro entre goroutines; se crea uno por llamada.
func fold(s string) string {
	return cases.Fold().String(s)
}

// AllocateChange reparte change entre los pagos en efectivo en orden de entrada, agotando
// primero el primero encontrado. Devuelve el cambio por pago, alineado con tenders.
// Si el cambio supera el efectivo recibido devuelve domain.ErrInvariantViolation.
func AllocateChange(tenders []Proposed, change decimal.Decimal, cls *CashClassifier) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(tenders))
	remaining := change
	for i, t := range tenders {
		out[i] = decimal.Zero
		if !remaining.IsPositive() || !cls.IsCash(t.MethodName) {
			continue
		}
		take := decimal.Min(remaining, t.Amount)
		out[i] = take
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return nil, fmt.Errorf("%w: cambio %s supera el efectivo recibido", domain.ErrInvariantViolation, change.StringFixed(2))
	}
	return out, nil
}
