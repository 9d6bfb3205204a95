package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementación de TicketRepository sobre PostgreSQL (usable con pool o tx).
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `
	id, unit_id, kind, table_ref, status, opened_by, opened_at, service_charge_percent,
	subtotal, service_charge, total, closed_at, closed_by, requested_settlement, settlement_requested_at`

const itemColumns = `
	id, ticket_id, product_id, pricing_mode, quantity, unit_price, line_total, entered_by, entered_at`

func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, unit_id, kind, table_ref, status, opened_by, opened_at,
			service_charge_percent, subtotal, service_charge, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.UnitID, t.Kind, nullIfEmpty(t.TableRef), t.Status, t.OpenedBy, t.OpenedAt,
		t.ServiceChargePercent, t.Subtotal, t.ServiceCharge, t.Total,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("la mesa %s ya tiene una cuenta abierta: %w", t.TableRef, domain.ErrConflict)
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.getOne(ctx, `SELECT`+ticketColumns+` FROM tickets WHERE id = $1`, id)
}

// GetForUpdate obtiene la cuenta y bloquea su fila: serializa ediciones y liquidación concurrentes.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.getOne(ctx, `SELECT`+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *TicketRepo) Update(ctx context.Context, t *entity.Ticket) error {
	query := `
		UPDATE tickets SET
			status = $2, service_charge_percent = $3, subtotal = $4, service_charge = $5, total = $6,
			closed_at = $7, closed_by = $8, requested_settlement = $9, settlement_requested_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Status, t.ServiceChargePercent, t.Subtotal, t.ServiceCharge, t.Total,
		t.ClosedAt, nullIfEmpty(t.ClosedBy), t.RequestedSettlement, t.SettlementRequestedAt,
	)
	if err != nil {
		return mapErr(err, "update ticket")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *TicketRepo) ListOpenByUnit(ctx context.Context, unitID string) ([]*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM tickets WHERE unit_id = $1 AND status = 'open'
		ORDER BY opened_at`
	return r.list(ctx, query, unitID)
}

func (r *TicketRepo) ListClosedBetween(ctx context.Context, unitID string, from, to time.Time) ([]*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM tickets
		WHERE unit_id = $1 AND status = 'closed' AND closed_at >= $2 AND closed_at < $3
		ORDER BY closed_at, id`
	return r.list(ctx, query, unitID, from, to)
}

func (r *TicketRepo) AddItem(ctx context.Context, it *entity.LineItem) error {
	query := `
		INSERT INTO line_items (id, ticket_id, product_id, pricing_mode, quantity, unit_price, line_total, entered_by, entered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TicketID, it.ProductID, it.PricingMode, it.Quantity, it.UnitPrice, it.LineTotal, it.EnteredBy, it.EnteredAt,
	)
	if err != nil {
		return mapErr(err, "insert line item")
	}
	return nil
}

func (r *TicketRepo) UpdateItem(ctx context.Context, it *entity.LineItem) error {
	query := `UPDATE line_items SET quantity = $2, line_total = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, it.ID, it.Quantity, it.LineTotal)
	if err != nil {
		return mapErr(err, "update line item")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ítem %s: %w", it.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *TicketRepo) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM line_items WHERE id = $1`, itemID)
	if err != nil {
		return mapErr(err, "delete line item")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ítem %s: %w", itemID, domain.ErrNotFound)
	}
	return nil
}

func (r *TicketRepo) GetItem(ctx context.Context, itemID string) (*entity.LineItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT`+itemColumns+` FROM line_items WHERE id = $1`, itemID))
	if err != nil {
		return nil, mapErr(err, "ítem "+itemID)
	}
	return it, nil
}

func (r *TicketRepo) getOne(ctx context.Context, query, id string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, "cuenta "+id)
	}
	if err := r.loadItems(ctx, []*entity.Ticket{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TicketRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	var out []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems carga los ítems de todas las cuentas en una sola consulta, en orden de entrada.
func (r *TicketRepo) loadItems(ctx context.Context, tickets []*entity.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	byID := make(map[string]*entity.Ticket, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
		byID[t.ID] = t
	}
	query := `SELECT` + itemColumns + `
		FROM line_items WHERE ticket_id = ANY($1::text[]::uuid[])
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		if t, ok := byID[it.TicketID]; ok {
			t.Items = append(t.Items, *it)
		}
	}
	return rows.Err()
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var (
		t                  entity.Ticket
		tableRef, closedBy *string
	)
	err := row.Scan(
		&t.ID, &t.UnitID, &t.Kind, &tableRef, &t.Status, &t.OpenedBy, &t.OpenedAt, &t.ServiceChargePercent,
		&t.Subtotal, &t.ServiceCharge, &t.Total, &t.ClosedAt, &closedBy, &t.RequestedSettlement, &t.SettlementRequestedAt,
	)
	if err != nil {
		return nil, err
	}
	if tableRef != nil {
		t.TableRef = *tableRef
	}
	if closedBy != nil {
		t.ClosedBy = *closedBy
	}
	return &t, nil
}

func scanItem(row pgx.Row) (*entity.LineItem, error) {
	var it entity.LineItem
	err := row.Scan(
		&it.ID, &it.TicketID, &it.ProductID, &it.PricingMode, &it.Quantity, &it.UnitPrice, &it.LineTotal, &it.EnteredBy, &it.EnteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
