// Package shift calcula el arqueo de cierre (Z-report) a partir de las cuentas y pagos del turno.
package shift

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// Input datos del cierre. Tickets son las cuentas cerradas dentro de la ventana del turno;
// Tenders los pagos de esas cuentas.
type Input struct {
	OpeningFloat decimal.Decimal
	DeclaredCash decimal.Decimal
	Tickets      []*entity.Ticket
	Tenders      []*entity.Tender
	IsCash       func(methodName string) bool
}

// Result cifras del arqueo.
type Result struct {
	NetRevenue          decimal.Decimal
	Breakdown           []entity.TenderTotal // ordenado por forma de pago
	CashTotal           decimal.Decimal
	ExpectedCash        decimal.Decimal
	CashVariance        decimal.Decimal
	SettledTicketIDs    []string
	UntenderedTicketIDs []string
}

// BreakdownMap vista por etiqueta del desglose, tal como se persiste en el turno.
func (r Result) BreakdownMap() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(r.Breakdown))
	for _, b := range r.Breakdown {
		m[b.Method] = b.Amount
	}
	return m
}

// Reconcile suma el neto (valor - cambio) de todos los pagos por forma de pago.
// Una cuenta cerrada sin pagos aporta su total al ingreso neto (no a ninguna forma de pago)
// y se informa en UntenderedTicketIDs.
func Reconcile(in Input) Result {
	byTicket := make(map[string]bool, len(in.Tickets))
	for _, t := range in.Tenders {
		byTicket[t.TicketID] = true
	}

	net := decimal.Zero
	totals := make(map[string]decimal.Decimal)
	for _, t := range in.Tenders {
		v := t.Net()
		net = net.Add(v)
		label := t.MethodName
		if label == "" {
			label = t.MethodID
		}
		totals[label] = totals[label].Add(v)
	}

	res := Result{}
	for _, tk := range in.Tickets {
		res.SettledTicketIDs = append(res.SettledTicketIDs, tk.ID)
		if !byTicket[tk.ID] {
			net = net.Add(tk.Total)
			res.UntenderedTicketIDs = append(res.UntenderedTicketIDs, tk.ID)
		}
	}
	sort.Strings(res.SettledTicketIDs)
	sort.Strings(res.UntenderedTicketIDs)

	labels := make([]string, 0, len(totals))
	for l := range totals {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	cash := decimal.Zero
	for _, l := range labels {
		isCash := in.IsCash != nil && in.IsCash(l)
		if isCash {
			cash = cash.Add(totals[l])
		}
		res.Breakdown = append(res.Breakdown, entity.TenderTotal{Method: l, Amount: totals[l], IsCash: isCash})
	}

	res.NetRevenue = net
	res.CashTotal = cash
	res.ExpectedCash = in.OpeningFloat.Add(cash)
	res.CashVariance = in.DeclaredCash.Sub(res.ExpectedCash)
	return res
}
