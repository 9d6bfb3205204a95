package memory

import (
	"context"
	"fmt"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var (
	_ repository.TenderRepository        = (*TenderRepository)(nil)
	_ repository.PaymentMethodRepository = (*PaymentMethodRepository)(nil)
)

// TenderRepository pagos en memoria (append-only).
type TenderRepository struct{ h handle }

func (r *TenderRepository) CreateBatch(_ context.Context, tenders []*entity.Tender) error {
	return r.h.with(func(st *state) error {
		for _, t := range tenders {
			st.tenders = append(st.tenders, *t)
		}
		return nil
	})
}

func (r *TenderRepository) ListByTicket(ctx context.Context, ticketID string) ([]*entity.Tender, error) {
	return r.ListByTickets(ctx, []string{ticketID})
}

func (r *TenderRepository) ListByTickets(_ context.Context, ticketIDs []string) ([]*entity.Tender, error) {
	want := make(map[string]bool, len(ticketIDs))
	for _, id := range ticketIDs {
		want[id] = true
	}
	var out []*entity.Tender
	err := r.h.with(func(st *state) error {
		for _, t := range st.tenders {
			if want[t.TicketID] {
				c := t
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// PaymentMethodRepository formas de pago en memoria.
type PaymentMethodRepository struct{ h handle }

func (r *PaymentMethodRepository) GetByID(_ context.Context, id string) (*entity.PaymentMethod, error) {
	var out *entity.PaymentMethod
	err := r.h.with(func(st *state) error {
		for _, m := range st.methods {
			if m.ID == id {
				c := m
				out = &c
				return nil
			}
		}
		return fmt.Errorf("forma de pago %s: %w", id, domain.ErrNotFound)
	})
	return out, err
}

func (r *PaymentMethodRepository) List(_ context.Context, activeOnly bool) ([]*entity.PaymentMethod, error) {
	var out []*entity.PaymentMethod
	err := r.h.with(func(st *state) error {
		for _, m := range st.methods {
			if activeOnly && !m.Active {
				continue
			}
			c := m
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}
