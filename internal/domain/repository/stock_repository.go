package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar saldo por unidad+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve domain.ErrNotFound si el par nunca tuvo movimientos.
	Get(ctx context.Context, unitID, productID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve domain.ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, unitID, productID string) (*entity.StockBalance, error)
	// ApplyDelta suma delta al saldo en una sola operación atómica (crea la fila si falta)
	// y devuelve el saldo resultante. No hay ventana entre lectura y escritura.
	ApplyDelta(ctx context.Context, unitID, productID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	ListByUnit(ctx context.Context, unitID string) ([]*entity.StockBalance, error)
}

// StockMovementRepository registro append-only de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error)
	// SumDeltas suma los deltas por producto de la unidad.
	SumDeltas(ctx context.Context, unitID string) (map[string]decimal.Decimal, error)
}
