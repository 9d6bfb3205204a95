package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo registro append-only de movimientos de inventario.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if !entity.ValidMovementKind(m.Kind) {
		return domain.Invalid("kind", fmt.Sprintf("tipo de movimiento desconocido %q", m.Kind))
	}
	query := `
		INSERT INTO stock_movements (id, unit_id, product_id, kind, delta, balance_before, balance_after,
			actor, created_at, note, reference, transfer_id, counterpart_unit_id, counterpart_movement_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.UnitID, m.ProductID, m.Kind, m.Delta, m.BalanceBefore, m.BalanceAfter,
		m.Actor, m.CreatedAt, nullIfEmpty(m.Note), nullIfEmpty(m.Reference),
		nullIfEmpty(m.TransferID), nullIfEmpty(m.CounterpartUnitID), nullIfEmpty(m.CounterpartMovementID),
	)
	if err != nil {
		return mapErr(err, "insert stock movement")
	}
	return nil
}

// List construye el WHERE dinámico a partir del filtro. Orden cronológico (inserción).
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UnitID != "" {
		add("unit_id = $%d", f.UnitID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	query := `
		SELECT id, unit_id, product_id, kind, delta, balance_before, balance_after, actor, created_at,
			COALESCE(note, ''), COALESCE(reference, ''), COALESCE(transfer_id::text, ''),
			COALESCE(counterpart_unit_id, ''), COALESCE(counterpart_movement_id::text, '')
		FROM stock_movements`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.UnitID, &m.ProductID, &m.Kind, &m.Delta, &m.BalanceBefore, &m.BalanceAfter, &m.Actor, &m.CreatedAt,
			&m.Note, &m.Reference, &m.TransferID, &m.CounterpartUnitID, &m.CounterpartMovementID,
		); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *StockMovementRepo) SumDeltas(ctx context.Context, unitID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(delta) FROM stock_movements WHERE unit_id = $1 GROUP BY product_id`, unitID)
	if err != nil {
		return nil, fmt.Errorf("sum stock movements: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			productID string
			total     decimal.Decimal
		)
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, err
		}
		out[productID] = total
	}
	return out, rows.Err()
}
