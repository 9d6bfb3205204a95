package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo implementación de ShiftRepository sobre PostgreSQL (usable con pool o tx).
// La unicidad del turno abierto la garantiza el índice parcial shifts_one_open_per_unit.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `
	id, unit_id, opened_by, opened_at, opening_float, status, close_requested_at,
	closed_by, closed_at, declared_cash, expected_cash, cash_variance, net_revenue,
	tender_breakdown, settled_ticket_ids, untendered_ticket_ids`

func (r *ShiftRepo) Create(ctx context.Context, s *entity.Shift) error {
	query := `
		INSERT INTO shifts (id, unit_id, opened_by, opened_at, opening_float, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.ID, s.UnitID, s.OpenedBy, s.OpenedAt, s.OpeningFloat, s.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("la unidad %s ya tiene un turno abierto: %w", s.UnitID, domain.ErrConflict)
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT`+shiftColumns+` FROM shifts WHERE id = $1`, id)
}

// GetForUpdate obtiene el turno y bloquea la fila (SELECT FOR UPDATE).
func (r *ShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT`+shiftColumns+` FROM shifts WHERE id = $1 FOR UPDATE`, id)
}

func (r *ShiftRepo) GetOpenByUnit(ctx context.Context, unitID string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT`+shiftColumns+` FROM shifts WHERE unit_id = $1 AND status = 'open'`, unitID)
}

// GetOpenByUnitForShare toma FOR SHARE sobre el turno abierto. Si un cierre ya tiene la fila,
// espera su commit y la condición status = 'open' se reevalúa sobre la versión nueva.
func (r *ShiftRepo) GetOpenByUnitForShare(ctx context.Context, unitID string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT`+shiftColumns+` FROM shifts WHERE unit_id = $1 AND status = 'open' FOR SHARE`, unitID)
}

func (r *ShiftRepo) Update(ctx context.Context, s *entity.Shift) error {
	breakdown, err := json.Marshal(nonNilBreakdown(s.TenderBreakdown))
	if err != nil {
		return fmt.Errorf("marshal tender_breakdown: %w", err)
	}
	settled, err := json.Marshal(nonNilIDs(s.SettledTicketIDs))
	if err != nil {
		return fmt.Errorf("marshal settled_ticket_ids: %w", err)
	}
	untendered, err := json.Marshal(nonNilIDs(s.UntenderedTicketIDs))
	if err != nil {
		return fmt.Errorf("marshal untendered_ticket_ids: %w", err)
	}
	query := `
		UPDATE shifts SET
			status = $2, close_requested_at = $3, closed_by = $4, closed_at = $5,
			declared_cash = $6, expected_cash = $7, cash_variance = $8, net_revenue = $9,
			tender_breakdown = $10::jsonb, settled_ticket_ids = $11::jsonb, untendered_ticket_ids = $12::jsonb
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Status, s.CloseRequestedAt, nullIfEmpty(s.ClosedBy), s.ClosedAt,
		toNull(s.DeclaredCash), toNull(s.ExpectedCash), toNull(s.CashVariance), toNull(s.NetRevenue),
		string(breakdown), string(settled), string(untendered),
	)
	if err != nil {
		return mapErr(err, "update shift")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("turno %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ShiftRepo) ListByUnit(ctx context.Context, unitID string, limit, offset int) ([]*entity.Shift, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts WHERE unit_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, unitID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()
	var out []*entity.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ShiftRepo) getOne(ctx context.Context, query, arg string) (*entity.Shift, error) {
	s, err := scanShift(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapErr(err, "turno "+arg)
	}
	return s, nil
}

func scanShift(row pgx.Row) (*entity.Shift, error) {
	var (
		s                                     entity.Shift
		declared, expected, variance, revenue decimal.NullDecimal
		breakdown, settled, untendered        []byte
		closedBy                              *string
	)
	err := row.Scan(
		&s.ID, &s.UnitID, &s.OpenedBy, &s.OpenedAt, &s.OpeningFloat, &s.Status, &s.CloseRequestedAt,
		&closedBy, &s.ClosedAt, &declared, &expected, &variance, &revenue,
		&breakdown, &settled, &untendered,
	)
	if err != nil {
		return nil, err
	}
	if closedBy != nil {
		s.ClosedBy = *closedBy
	}
	s.DeclaredCash = fromNull(declared)
	s.ExpectedCash = fromNull(expected)
	s.CashVariance = fromNull(variance)
	s.NetRevenue = fromNull(revenue)
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &s.TenderBreakdown); err != nil {
			return nil, fmt.Errorf("tender_breakdown: %w", err)
		}
	}
	if len(settled) > 0 {
		if err := json.Unmarshal(settled, &s.SettledTicketIDs); err != nil {
			return nil, fmt.Errorf("settled_ticket_ids: %w", err)
		}
	}
	if len(untendered) > 0 {
		if err := json.Unmarshal(untendered, &s.UntenderedTicketIDs); err != nil {
			return nil, fmt.Errorf("untendered_ticket_ids: %w", err)
		}
	}
	return &s, nil
}

func nonNilBreakdown(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
