package order_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/application/order"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/memory"
	"github.com/ricazo/pos-engine/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUseCase(t *testing.T) (*order.UseCase, *memory.Store) {
	t.Helper()
	s := memory.New()
	s.PutProduct(&entity.SimpleProduct{ID: "pao", Name: "Pão de Queijo", PricingMode: entity.PricingModeUnit, UnitPrice: d("2.00")})
	s.PutProduct(&entity.SimpleProduct{ID: "queijo", Name: "Queijo Minas", PricingMode: entity.PricingModeWeight, UnitPrice: d("40.00")})
	s.PutProduct(&entity.ComboProduct{ID: "kit", Name: "Kit Manhã", UnitPrice: d("15.00"), Components: []entity.ComboComponent{
		{ProductID: "pao", QuantityPerUnit: d("2")},
	}})
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc := order.NewUseCase(s, s.Tickets(), s, order.Config{TableServiceChargePercent: 10, MaxServiceChargePercent: 20}, logger.Nop()).
		WithClock(func() time.Time { return now })
	return uc, s
}

func add(t *testing.T, uc *order.UseCase, ticketID, product, qty string) *entity.LineItem {
	t.Helper()
	it, err := uc.AddLineItem(context.Background(), order.AddItemInput{TicketID: ticketID, ProductID: product, Quantity: d(qty), EnteredBy: "garcom"})
	require.NoError(t, err)
	return it
}

func TestOpenTicket_TableDefaultsAndUniqueness(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: " 12 ", OpenedBy: "garcom"})
	require.NoError(t, err)
	assert.Equal(t, "12", tk.TableRef)
	assert.True(t, d("10").Equal(tk.ServiceChargePercent))

	_, err = uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "12", OpenedBy: "outro"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.OpenTicket(ctx, order.OpenInput{UnitID: "u2", Kind: entity.TicketKindTable, TableRef: "12", OpenedBy: "outro"})
	assert.NoError(t, err, "la misma mesa en otra unidad es otra mesa")

	counter, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindCounter, OpenedBy: "caixa"})
	require.NoError(t, err)
	assert.True(t, counter.ServiceChargePercent.IsZero())
}

func TestOpenTicket_ConcurrentSameTable(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "3", OpenedBy: "g"})
		}(i)
	}
	wg.Wait()
	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
	open, err := uc.ListOpenTickets(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestOpenTicket_Validation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	tests := []order.OpenInput{
		{UnitID: "u1", Kind: entity.TicketKindTable, OpenedBy: "g"},
		{UnitID: "u1", Kind: "delivery", OpenedBy: "g"},
		{UnitID: "u1", Kind: entity.TicketKindCounter, TableRef: "4", OpenedBy: "g"},
		{Kind: entity.TicketKindCounter, OpenedBy: "g"},
		{UnitID: "u1", Kind: entity.TicketKindCounter},
	}
	for _, in := range tests {
		_, err := uc.OpenTicket(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestAddLineItem_UnitAccumulatesWeightAppends(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "1", OpenedBy: "g"})
	require.NoError(t, err)

	first := add(t, uc, tk.ID, "pao", "1")
	second := add(t, uc, tk.ID, "pao", "2")
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, d("3").Equal(second.Quantity))
	assert.True(t, d("6.00").Equal(second.LineTotal))

	w1 := add(t, uc, tk.ID, "queijo", "0.25")
	w2 := add(t, uc, tk.ID, "queijo", "0.1")
	assert.NotEqual(t, w1.ID, w2.ID)

	got, err := uc.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.True(t, d("20.00").Equal(got.Subtotal))
	assert.True(t, d("2.00").Equal(got.ServiceCharge))
	assert.True(t, d("22.00").Equal(got.Total))

	// el precio queda capturado al momento de la entrada
	s.PutProduct(&entity.SimpleProduct{ID: "pao", Name: "Pão de Queijo", PricingMode: entity.PricingModeUnit, UnitPrice: d("3.00")})
	again := add(t, uc, tk.ID, "pao", "1")
	assert.True(t, d("2.00").Equal(again.UnitPrice))
	assert.True(t, d("8.00").Equal(again.LineTotal))
}

func TestAddLineItem_CapturesUnitPrice(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	s.PutUnitPrice("u2", "pao", d("2.40"))

	centro, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindCounter, OpenedBy: "caixa"})
	require.NoError(t, err)
	praia, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u2", Kind: entity.TicketKindCounter, OpenedBy: "caixa"})
	require.NoError(t, err)

	a := add(t, uc, centro.ID, "pao", "3")
	b := add(t, uc, praia.ID, "pao", "3")
	assert.True(t, d("2.00").Equal(a.UnitPrice))
	assert.True(t, d("6.00").Equal(a.LineTotal))
	assert.True(t, d("2.40").Equal(b.UnitPrice))
	assert.True(t, d("7.20").Equal(b.LineTotal))

	// un cambio posterior no altera lo ya capturado
	s.PutUnitPrice("u2", "pao", d("2.60"))
	got, err := uc.GetTicket(ctx, praia.ID)
	require.NoError(t, err)
	assert.True(t, d("7.20").Equal(got.Total))
}

func TestAddLineItem_Validation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindCounter, OpenedBy: "g"})
	require.NoError(t, err)

	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: tk.ID, ProductID: "pao", Quantity: d("1.5"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: tk.ID, ProductID: "pao", Quantity: d("0"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: tk.ID, ProductID: "kit", Quantity: d("0.5"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los combos se venden por unidad")
	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: tk.ID, ProductID: "ghost", Quantity: d("1"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: "nope", ProductID: "pao", Quantity: d("1"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveLineItem_LastItemCancels(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "8", OpenedBy: "g"})
	require.NoError(t, err)
	a := add(t, uc, tk.ID, "pao", "2")
	b := add(t, uc, tk.ID, "kit", "1")

	after, err := uc.RemoveLineItem(ctx, b.ID, "g")
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusOpen, after.Status)
	assert.True(t, d("4.40").Equal(after.Total))

	after, err = uc.RemoveLineItem(ctx, a.ID, "g")
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusCancelled, after.Status)
	assert.True(t, after.Total.IsZero())

	_, err = uc.AddLineItem(ctx, order.AddItemInput{TicketID: tk.ID, ProductID: "pao", Quantity: d("1"), EnteredBy: "g"})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	// la mesa queda libre
	_, err = uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "8", OpenedBy: "g"})
	assert.NoError(t, err)
}

func TestRequestSettlement_IsAdvisory(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "2", OpenedBy: "g"})
	require.NoError(t, err)
	add(t, uc, tk.ID, "pao", "1")

	flagged, err := uc.RequestSettlement(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, flagged.RequestedSettlement)
	require.NotNil(t, flagged.SettlementRequestedAt)

	add(t, uc, tk.ID, "pao", "1")
	got, err := uc.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.RequestedSettlement)
	assert.True(t, d("2").Equal(got.Items[0].Quantity))
}

func TestSetServiceCharge(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	tk, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "9", OpenedBy: "g"})
	require.NoError(t, err)
	add(t, uc, tk.ID, "pao", "5")

	got, err := uc.SetServiceCharge(ctx, tk.ID, d("12"))
	require.NoError(t, err)
	assert.True(t, d("11.20").Equal(got.Total))

	got, err = uc.SetServiceCharge(ctx, tk.ID, d("0"))
	require.NoError(t, err)
	assert.True(t, d("10.00").Equal(got.Total))

	_, err = uc.SetServiceCharge(ctx, tk.ID, d("25"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SetServiceCharge(ctx, tk.ID, d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	counter, err := uc.OpenTicket(ctx, order.OpenInput{UnitID: "u1", Kind: entity.TicketKindCounter, OpenedBy: "g"})
	require.NoError(t, err)
	_, err = uc.SetServiceCharge(ctx, counter.ID, d("10"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
