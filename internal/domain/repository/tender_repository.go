package repository

import (
	"context"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// TenderRepository pagos append-only: se crean al liquidar y nunca se modifican.
type TenderRepository interface {
	CreateBatch(ctx context.Context, tenders []*entity.Tender) error
	ListByTicket(ctx context.Context, ticketID string) ([]*entity.Tender, error)
	ListByTickets(ctx context.Context, ticketIDs []string) ([]*entity.Tender, error)
}

// PaymentMethodRepository formas de pago configuradas.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.PaymentMethod, error)
}
