package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepository)(nil)

// ShiftRepository turnos en memoria.
type ShiftRepository struct{ h handle }

func (r *ShiftRepository) Create(_ context.Context, shift *entity.Shift) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.shifts[shift.ID]; ok {
			return fmt.Errorf("turno %s: %w", shift.ID, domain.ErrConflict)
		}
		for _, sh := range st.shifts {
			if sh.UnitID == shift.UnitID && sh.Status == entity.ShiftStatusOpen {
				return fmt.Errorf("la unidad %s ya tiene un turno abierto: %w", shift.UnitID, domain.ErrConflict)
			}
		}
		st.next()
		st.shifts[shift.ID] = copyShift(*shift)
		return nil
	})
}

func (r *ShiftRepository) GetByID(_ context.Context, id string) (*entity.Shift, error) {
	var out *entity.Shift
	err := r.h.with(func(st *state) error {
		sh, ok := st.shifts[id]
		if !ok {
			return fmt.Errorf("turno %s: %w", id, domain.ErrNotFound)
		}
		c := copyShift(sh)
		out = &c
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya es exclusiva.
func (r *ShiftRepository) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.GetByID(ctx, id)
}

func (r *ShiftRepository) GetOpenByUnit(_ context.Context, unitID string) (*entity.Shift, error) {
	var out *entity.Shift
	err := r.h.with(func(st *state) error {
		for _, sh := range st.shifts {
			if sh.UnitID == unitID && sh.Status == entity.ShiftStatusOpen {
				c := copyShift(sh)
				out = &c
				return nil
			}
		}
		return fmt.Errorf("turno abierto de %s: %w", unitID, domain.ErrNotFound)
	})
	return out, err
}

// GetOpenByUnitForShare en memoria equivale a GetOpenByUnit: la transacción ya es exclusiva.
func (r *ShiftRepository) GetOpenByUnitForShare(ctx context.Context, unitID string) (*entity.Shift, error) {
	return r.GetOpenByUnit(ctx, unitID)
}

func (r *ShiftRepository) Update(_ context.Context, shift *entity.Shift) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.shifts[shift.ID]; !ok {
			return fmt.Errorf("turno %s: %w", shift.ID, domain.ErrNotFound)
		}
		st.shifts[shift.ID] = copyShift(*shift)
		return nil
	})
}

// ListByUnit turnos de la unidad, el más reciente primero.
func (r *ShiftRepository) ListByUnit(_ context.Context, unitID string, limit, offset int) ([]*entity.Shift, error) {
	var out []*entity.Shift
	err := r.h.with(func(st *state) error {
		for _, sh := range st.shifts {
			if sh.UnitID == unitID {
				c := copyShift(sh)
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return page(out, limit, offset), nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
