package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) Get(ctx context.Context, unitID, productID string) (*entity.StockBalance, error) {
	query := `
		SELECT unit_id, product_id, quantity, updated_at
		FROM stock_balances WHERE unit_id = $1 AND product_id = $2`
	return r.getOne(ctx, query, unitID, productID)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE) para evitar carreras.
func (r *StockRepo) GetForUpdate(ctx context.Context, unitID, productID string) (*entity.StockBalance, error) {
	query := `
		SELECT unit_id, product_id, quantity, updated_at
		FROM stock_balances WHERE unit_id = $1 AND product_id = $2
		FOR UPDATE`
	return r.getOne(ctx, query, unitID, productID)
}

// ApplyDelta suma delta al saldo con un upsert: la lectura y la escritura son una sola sentencia,
// así dos ventas concurrentes del mismo producto nunca pierden un descuento.
func (r *StockRepo) ApplyDelta(ctx context.Context, unitID, productID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_balances (unit_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (unit_id, product_id) DO UPDATE
		SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING quantity`
	var after decimal.Decimal
	if err := r.q.QueryRow(ctx, query, unitID, productID, delta, at).Scan(&after); err != nil {
		return decimal.Zero, mapErr(err, "apply stock delta")
	}
	return after, nil
}

func (r *StockRepo) ListByUnit(ctx context.Context, unitID string) ([]*entity.StockBalance, error) {
	query := `
		SELECT unit_id, product_id, quantity, updated_at
		FROM stock_balances WHERE unit_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.UnitID, &b.ProductID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *StockRepo) getOne(ctx context.Context, query string, args ...any) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.UnitID, &b.ProductID, &b.Quantity, &b.UpdatedAt); err != nil {
		return nil, mapErr(err, "saldo")
	}
	return &b, nil
}
