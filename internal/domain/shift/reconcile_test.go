package shift_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/settlement"
	"github.com/ricazo/pos-engine/internal/domain/shift"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var isCash = settlement.NewCashClassifier("dinheiro").IsCash

func TestReconcile_CashSaleWithChange(t *testing.T) {
	res := shift.Reconcile(shift.Input{
		OpeningFloat: d("150.00"),
		DeclaredCash: d("200.00"),
		Tickets:      []*entity.Ticket{{ID: "t1", Total: d("47.50")}},
		Tenders: []*entity.Tender{
			{TicketID: "t1", MethodName: "Dinheiro", Amount: d("50.00"), ChangeGiven: d("2.50")},
		},
		IsCash: isCash,
	})

	assert.True(t, d("47.50").Equal(res.NetRevenue))
	assert.True(t, d("47.50").Equal(res.CashTotal))
	assert.True(t, d("197.50").Equal(res.ExpectedCash), "expected = %s", res.ExpectedCash)
	assert.True(t, d("2.50").Equal(res.CashVariance), "variance = %s", res.CashVariance)
	assert.Equal(t, []string{"t1"}, res.SettledTicketIDs)
	assert.Empty(t, res.UntenderedTicketIDs)
}

func TestReconcile_BreakdownByMethod(t *testing.T) {
	res := shift.Reconcile(shift.Input{
		OpeningFloat: d("100"),
		DeclaredCash: d("120"),
		Tickets: []*entity.Ticket{
			{ID: "b", Total: d("30")},
			{ID: "a", Total: d("25")},
		},
		Tenders: []*entity.Tender{
			{TicketID: "a", MethodName: "Pix", Amount: d("10")},
			{TicketID: "a", MethodName: "Dinheiro", Amount: d("20"), ChangeGiven: d("5")},
			{TicketID: "b", MethodName: "Crédito", Amount: d("30")},
		},
		IsCash: isCash,
	})

	require.Len(t, res.Breakdown, 3)
	assert.Equal(t, "Crédito", res.Breakdown[0].Method)
	assert.Equal(t, "Dinheiro", res.Breakdown[1].Method)
	assert.True(t, res.Breakdown[1].IsCash)
	assert.True(t, d("15").Equal(res.Breakdown[1].Amount))
	assert.Equal(t, "Pix", res.Breakdown[2].Method)

	assert.True(t, d("55").Equal(res.NetRevenue))
	assert.True(t, d("115").Equal(res.ExpectedCash))
	assert.True(t, d("5").Equal(res.CashVariance))
	assert.Equal(t, []string{"a", "b"}, res.SettledTicketIDs)
	assert.True(t, d("15").Equal(res.BreakdownMap()["Dinheiro"]))
}

func TestReconcile_UntenderedTicketFallsBackToTotal(t *testing.T) {
	res := shift.Reconcile(shift.Input{
		OpeningFloat: d("50"),
		DeclaredCash: d("40"),
		Tickets: []*entity.Ticket{
			{ID: "ok", Total: d("10")},
			{ID: "orphan", Total: d("12.30")},
		},
		Tenders: []*entity.Tender{{TicketID: "ok", MethodName: "Pix", Amount: d("10")}},
		IsCash:  isCash,
	})

	assert.True(t, d("22.30").Equal(res.NetRevenue))
	assert.Equal(t, []string{"orphan"}, res.UntenderedTicketIDs)
	assert.True(t, d("50").Equal(res.ExpectedCash))
	assert.True(t, d("-10").Equal(res.CashVariance))
}

func TestReconcile_Empty(t *testing.T) {
	res := shift.Reconcile(shift.Input{OpeningFloat: d("80"), DeclaredCash: d("80"), IsCash: isCash})
	assert.True(t, res.NetRevenue.IsZero())
	assert.True(t, res.CashVariance.IsZero())
	assert.Empty(t, res.Breakdown)
}
