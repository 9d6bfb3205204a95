package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.TenderRepository = (*TenderRepo)(nil)

// TenderRepo pagos append-only sobre PostgreSQL. No expone Update ni Delete.
type TenderRepo struct {
	q Querier
}

func NewTenderRepository(q Querier) *TenderRepo {
	return &TenderRepo{q: q}
}

const tenderColumns = `
	id, ticket_id, method_id, method_name, amount, change_given, collected_by, collected_at`

// CreateBatch inserta todos los pagos de una liquidación con un único round-trip (pgx.Batch).
func (r *TenderRepo) CreateBatch(ctx context.Context, tenders []*entity.Tender) error {
	if len(tenders) == 0 {
		return nil
	}
	query := `
		INSERT INTO tenders (id, ticket_id, method_id, method_name, amount, change_given, collected_by, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for _, t := range tenders {
		batch.Queue(query, t.ID, t.TicketID, t.MethodID, t.MethodName, t.Amount, t.ChangeGiven, t.CollectedBy, t.CollectedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range tenders {
		if _, err := br.Exec(); err != nil {
			return mapErr(err, "insert tender")
		}
	}
	return nil
}

func (r *TenderRepo) ListByTicket(ctx context.Context, ticketID string) ([]*entity.Tender, error) {
	query := `SELECT` + tenderColumns + ` FROM tenders WHERE ticket_id = $1 ORDER BY collected_at, id`
	return r.list(ctx, query, ticketID)
}

func (r *TenderRepo) ListByTickets(ctx context.Context, ticketIDs []string) ([]*entity.Tender, error) {
	if len(ticketIDs) == 0 {
		return nil, nil
	}
	query := `SELECT` + tenderColumns + `
		FROM tenders WHERE ticket_id = ANY($1::text[]::uuid[])
		ORDER BY ticket_id, collected_at, id`
	return r.list(ctx, query, ticketIDs)
}

func (r *TenderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Tender, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list tenders")
	}
	defer rows.Close()
	var out []*entity.Tender
	for rows.Next() {
		var t entity.Tender
		if err := rows.Scan(&t.ID, &t.TicketID, &t.MethodID, &t.MethodName, &t.Amount, &t.ChangeGiven, &t.CollectedBy, &t.CollectedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

var _ repository.PaymentMethodRepository = (*PaymentMethodRepo)(nil)

// PaymentMethodRepo formas de pago configuradas (tabla payment_methods).
type PaymentMethodRepo struct {
	q Querier
}

func NewPaymentMethodRepository(q Querier) *PaymentMethodRepo {
	return &PaymentMethodRepo{q: q}
}

func (r *PaymentMethodRepo) GetByID(ctx context.Context, id string) (*entity.PaymentMethod, error) {
	var m entity.PaymentMethod
	err := r.q.QueryRow(ctx, `SELECT id, name, active FROM payment_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Active)
	if err != nil {
		return nil, mapErr(err, "forma de pago "+id)
	}
	return &m, nil
}

func (r *PaymentMethodRepo) List(ctx context.Context, activeOnly bool) ([]*entity.PaymentMethod, error) {
	query := `SELECT id, name, active FROM payment_methods WHERE ($1 = false OR active) ORDER BY id`
	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()
	var out []*entity.PaymentMethod
	for rows.Next() {
		var m entity.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
