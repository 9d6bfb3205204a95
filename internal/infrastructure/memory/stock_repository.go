package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepository)(nil)
	_ repository.StockMovementRepository = (*MovementRepository)(nil)
)

// StockRepository saldos en memoria.
type StockRepository struct{ h handle }

func (r *StockRepository) Get(_ context.Context, unitID, productID string) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.h.with(func(st *state) error {
		b, ok := st.balances[stockKey{unitID, productID}]
		if !ok {
			return fmt.Errorf("saldo %s/%s: %w", unitID, productID, domain.ErrNotFound)
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *StockRepository) GetForUpdate(ctx context.Context, unitID, productID string) (*entity.StockBalance, error) {
	return r.Get(ctx, unitID, productID)
}

func (r *StockRepository) ApplyDelta(_ context.Context, unitID, productID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	var after decimal.Decimal
	err := r.h.with(func(st *state) error {
		k := stockKey{unitID, productID}
		b, ok := st.balances[k]
		if !ok {
			b = entity.StockBalance{UnitID: unitID, ProductID: productID}
		}
		b.Quantity = b.Quantity.Add(delta)
		b.UpdatedAt = at
		st.balances[k] = b
		after = b.Quantity
		return nil
	})
	return after, err
}

func (r *StockRepository) ListByUnit(_ context.Context, unitID string) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	err := r.h.with(func(st *state) error {
		for k, b := range st.balances {
			if k.unitID == unitID {
				c := b
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}

// MovementRepository movimientos en memoria, en orden de inserción.
type MovementRepository struct{ h handle }

func (r *MovementRepository) Create(_ context.Context, m *entity.StockMovement) error {
	if !entity.ValidMovementKind(m.Kind) {
		return domain.Invalid("kind", fmt.Sprintf("tipo de movimiento desconocido %q", m.Kind))
	}
	return r.h.with(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepository) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.with(func(st *state) error {
		for _, m := range st.movements {
			if f.UnitID != "" && m.UnitID != f.UnitID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.CreatedAt.Before(*f.To) {
				continue
			}
			c := m
			out = append(out, &c)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *MovementRepository) SumDeltas(_ context.Context, unitID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	err := r.h.with(func(st *state) error {
		for _, m := range st.movements {
			if m.UnitID == unitID {
				out[m.ProductID] = out[m.ProductID].Add(m.Delta)
			}
		}
		return nil
	})
	return out, err
}
