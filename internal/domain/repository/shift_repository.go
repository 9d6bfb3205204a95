package repository

import (
	"context"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// ShiftRepository define el puerto de persistencia para turnos de caja.
type ShiftRepository interface {
	// Create inserta un turno abierto. Devuelve domain.ErrConflict si la unidad ya tiene uno abierto.
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id string) (*entity.Shift, error)
	// GetForUpdate bloquea la fila del turno hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Shift, error)
	// GetOpenByUnit devuelve el turno abierto de la unidad o domain.ErrNotFound.
	GetOpenByUnit(ctx context.Context, unitID string) (*entity.Shift, error)
	// GetOpenByUnitForShare como GetOpenByUnit, pero mantiene un bloqueo compartido sobre el turno
	// hasta el fin de la transacción: el cierre (GetForUpdate) espera a los cobros en curso.
	GetOpenByUnitForShare(ctx context.Context, unitID string) (*entity.Shift, error)
	Update(ctx context.Context, shift *entity.Shift) error
	ListByUnit(ctx context.Context, unitID string, limit, offset int) ([]*entity.Shift, error)
}
