package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/application/inventory"
	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/memory"
	"github.com/ricazo/pos-engine/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*inventory.UseCase, *memory.Store) {
	t.Helper()
	s := memory.New()
	s.PutProduct(&entity.SimpleProduct{ID: "coffee", Name: "Café", PricingMode: entity.PricingModeUnit, UnitPrice: d("5")})
	s.PutProduct(&entity.SimpleProduct{ID: "croissant", Name: "Croissant", PricingMode: entity.PricingModeUnit, UnitPrice: d("7")})
	s.PutProduct(&entity.SimpleProduct{ID: "bread", Name: "Pão Francês", PricingMode: entity.PricingModeWeight, UnitPrice: d("18.90")})
	s.PutProduct(&entity.ComboProduct{ID: "kit", Name: "Morning Kit", UnitPrice: d("15"), Components: []entity.ComboComponent{
		{ProductID: "coffee", QuantityPerUnit: d("1")},
		{ProductID: "croissant", QuantityPerUnit: d("2")},
	}})
	uc := inventory.NewUseCase(s, s.Stock(), s.Movements(), s, logger.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return uc, s
}

func balance(t *testing.T, s *memory.Store, unit, product string) decimal.Decimal {
	t.Helper()
	b, err := s.Stock().Get(context.Background(), unit, product)
	require.NoError(t, err)
	return b.Quantity
}

func TestDecrementForSale_ComboExplodesIntoComponents(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	_, err := uc.ReceiveEntry(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "croissant", Quantity: d("10"), Actor: "ana"})
	require.NoError(t, err)

	kit, err := s.GetProduct(ctx, "u1", "kit")
	require.NoError(t, err)
	var movs []*entity.StockMovement
	err = s.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		movs, err = uc.DecrementForSale(ctx, repos, "u1",
			[]entity.LineItem{{ProductID: "kit", Quantity: d("4")}},
			map[string]entity.Product{"kit": kit}, "ana", "ticket-1")
		return err
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	assert.True(t, d("-4").Equal(balance(t, s, "u1", "coffee")))
	assert.True(t, d("2").Equal(balance(t, s, "u1", "croissant")))
	_, err = s.Stock().Get(ctx, "u1", "kit")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := uc.ListMovements(ctx, entity.MovementFilter{UnitID: "u1", Kind: entity.MovementKindSale})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, m := range all {
		assert.NotEqual(t, "kit", m.ProductID)
		assert.Equal(t, "ticket-1", m.Reference)
		assert.True(t, m.BalanceAfter.Equal(m.BalanceBefore.Add(m.Delta)))
	}
	croissant := all[1]
	assert.Equal(t, "croissant", croissant.ProductID)
	assert.True(t, d("10").Equal(croissant.BalanceBefore))
	assert.True(t, d("-8").Equal(croissant.Delta))
}

func TestDiscardStock_BoundedByBalance(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	_, err := uc.ReceiveEntry(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "bread", Quantity: d("2.5"), Actor: "ana"})
	require.NoError(t, err)

	_, err = uc.DiscardStock(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "bread", Quantity: d("3"), Note: "queimado", Actor: "ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, d("2.5").Equal(balance(t, s, "u1", "bread")))

	mov, err := uc.DiscardStock(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "bread", Quantity: d("0.5"), Note: "queimado", Actor: "ana"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindDiscard, mov.Kind)
	assert.True(t, d("2").Equal(mov.BalanceAfter))

	_, err = uc.DiscardStock(ctx, inventory.MovementInput{UnitID: "u9", ProductID: "bread", Quantity: d("1"), Note: "x", Actor: "ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin saldo no hay qué dar de baja")
}

func TestMovementValidation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	tests := []struct {
		name string
		in   inventory.MovementInput
	}{
		{"cantidad cero", inventory.MovementInput{UnitID: "u1", ProductID: "coffee", Quantity: d("0"), Actor: "a"}},
		{"cantidad negativa", inventory.MovementInput{UnitID: "u1", ProductID: "coffee", Quantity: d("-1"), Actor: "a"}},
		{"fracción en producto por unidad", inventory.MovementInput{UnitID: "u1", ProductID: "coffee", Quantity: d("1.5"), Actor: "a"}},
		{"combo", inventory.MovementInput{UnitID: "u1", ProductID: "kit", Quantity: d("1"), Actor: "a"}},
		{"sin unidad", inventory.MovementInput{ProductID: "coffee", Quantity: d("1"), Actor: "a"}},
		{"sin actor", inventory.MovementInput{UnitID: "u1", ProductID: "coffee", Quantity: d("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.ReceiveEntry(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := uc.ReceiveEntry(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "ghost", Quantity: d("1"), Actor: "a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiveTransfer_LegsReferenceEachOther(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)

	tr, err := uc.ReceiveTransfer(ctx, inventory.TransferInput{
		FromUnitID: "fabrica", ToUnitID: "loja", ProductID: "croissant", Quantity: d("30"), Actor: "joao", Note: "lote 12",
	})
	require.NoError(t, err)
	require.NotNil(t, tr.Out)
	require.NotNil(t, tr.In)

	assert.Equal(t, entity.MovementKindTransferOut, tr.Out.Kind)
	assert.Equal(t, entity.MovementKindTransferIn, tr.In.Kind)
	assert.Equal(t, tr.ID, tr.Out.TransferID)
	assert.Equal(t, tr.ID, tr.In.TransferID)
	assert.Equal(t, tr.In.ID, tr.Out.CounterpartMovementID)
	assert.Equal(t, tr.Out.ID, tr.In.CounterpartMovementID)
	assert.Equal(t, "loja", tr.Out.CounterpartUnitID)
	assert.Equal(t, "fabrica", tr.In.CounterpartUnitID)

	// la salida no está acotada: el origen puede quedar negativo
	assert.True(t, d("-30").Equal(balance(t, s, "fabrica", "croissant")))
	assert.True(t, d("30").Equal(balance(t, s, "loja", "croissant")))

	_, err = uc.ReceiveTransfer(ctx, inventory.TransferInput{FromUnitID: "loja", ToUnitID: "loja", ProductID: "croissant", Quantity: d("1"), Actor: "joao"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConcurrentSales_NoLostUpdates(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	_, err := uc.ReceiveEntry(ctx, inventory.MovementInput{UnitID: "u1", ProductID: "coffee", Quantity: d("100"), Actor: "ana"})
	require.NoError(t, err)
	coffee, err := s.GetProduct(ctx, "u1", "coffee")
	require.NoError(t, err)
	products := map[string]entity.Product{"coffee": coffee}

	const terminals = 20
	var wg sync.WaitGroup
	errs := make(chan error, terminals)
	for i := 0; i < terminals; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
				_, err := uc.DecrementForSale(ctx, repos, "u1", []entity.LineItem{{ProductID: "coffee", Quantity: d("3")}}, products, "t", "")
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, d("40").Equal(balance(t, s, "u1", "coffee")))
	issues, err := uc.CheckConsistency(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestListBalances_RequiresUnit(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.ListBalances(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ListMovements(context.Background(), entity.MovementFilter{Kind: "adjust"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
