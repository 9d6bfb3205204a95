package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/memory"
)

func TestRun_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	boom := errors.New("boom")

	err := s.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		_, err := repos.Stock.ApplyDelta(ctx, "u1", "p1", decimal.NewFromInt(5), time.Now())
		require.NoError(t, err)
		require.NoError(t, repos.Movements.Create(ctx, &entity.StockMovement{ID: "m1", UnitID: "u1", ProductID: "p1", Kind: entity.MovementKindEntry, Delta: decimal.NewFromInt(5)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Stock().Get(ctx, "u1", "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	movs, err := s.Movements().List(ctx, entity.MovementFilter{UnitID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRun_CommitPublishes(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		_, err := repos.Stock.ApplyDelta(ctx, "u1", "p1", decimal.NewFromInt(-2), time.Now())
		return err
	})
	require.NoError(t, err)

	b, err := s.Stock().Get(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-2).Equal(b.Quantity))
}

func TestShiftRepository_OneOpenPerUnit(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	repo := s.Shifts()

	require.NoError(t, repo.Create(ctx, &entity.Shift{ID: "s1", UnitID: "u1", Status: entity.ShiftStatusOpen}))
	err := repo.Create(ctx, &entity.Shift{ID: "s2", UnitID: "u1", Status: entity.ShiftStatusOpen})
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, repo.Create(ctx, &entity.Shift{ID: "s3", UnitID: "u2", Status: entity.ShiftStatusOpen}))

	open, err := repo.GetOpenByUnit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", open.ID)
}

func TestTicketRepository_OpenTableIsUnique(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	repo := s.Tickets()

	table := func(id string) *entity.Ticket {
		return &entity.Ticket{ID: id, UnitID: "u1", Kind: entity.TicketKindTable, TableRef: "7", Status: entity.TicketStatusOpen}
	}
	require.NoError(t, repo.Create(ctx, table("t1")))
	assert.ErrorIs(t, repo.Create(ctx, table("t2")), domain.ErrConflict)

	t1, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	t1.Status = entity.TicketStatusCancelled
	require.NoError(t, repo.Update(ctx, t1))
	assert.NoError(t, repo.Create(ctx, table("t3")))
}

func TestTicketRepository_ItemsKeepEntryOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	repo := s.Tickets()
	require.NoError(t, repo.Create(ctx, &entity.Ticket{ID: "t1", UnitID: "u1", Kind: entity.TicketKindCounter, Status: entity.TicketStatusOpen}))
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.AddItem(ctx, &entity.LineItem{ID: id, TicketID: "t1", ProductID: id}))
	}
	tk, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, tk.Items, 3)
	assert.Equal(t, "c", tk.Items[0].ID)
	assert.Equal(t, "b", tk.Items[2].ID)

	require.NoError(t, repo.DeleteItem(ctx, "a"))
	_, err = repo.GetItem(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementRepository_RejectsUnknownKind(t *testing.T) {
	s := memory.New()
	err := s.Movements().Create(context.Background(), &entity.StockMovement{ID: "m", Kind: "adjust"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewSeeded_BalancesMatchMovements(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()

	sums, err := s.Movements().SumDeltas(ctx, memory.DemoUnitID)
	require.NoError(t, err)
	balances, err := s.Stock().ListByUnit(ctx, memory.DemoUnitID)
	require.NoError(t, err)
	require.NotEmpty(t, balances)
	for _, b := range balances {
		assert.True(t, sums[b.ProductID].Equal(b.Quantity), b.ProductID)
	}

	p, err := s.GetProduct(ctx, memory.DemoUnitID, "kit-manha")
	require.NoError(t, err)
	_, isCombo := p.(*entity.ComboProduct)
	assert.True(t, isCombo)
}

func TestGetProduct_UnitPriceOverride(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.PutProduct(&entity.SimpleProduct{ID: "pao", Name: "Pão", PricingMode: entity.PricingModeUnit, UnitPrice: decimal.RequireFromString("2.00")})
	s.PutUnitPrice("praia", "pao", decimal.RequireFromString("2.50"))

	centro, err := s.GetProduct(ctx, "centro", "pao")
	require.NoError(t, err)
	assert.Equal(t, "2", centro.Price().String())

	praia, err := s.GetProduct(ctx, "praia", "pao")
	require.NoError(t, err)
	assert.Equal(t, "2.5", praia.Price().String())

	again, err := s.GetProduct(ctx, "centro", "pao")
	require.NoError(t, err)
	assert.Equal(t, "2", again.Price().String(), "el precio base no cambia")
}
