package repository

import (
	"context"
	"time"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// TicketRepository define el puerto de persistencia para cuentas y sus ítems.
// GetByID y GetForUpdate devuelven la cuenta con Items cargados en orden de entrada.
type TicketRepository interface {
	// Create inserta la cuenta. Devuelve domain.ErrConflict si ya hay una cuenta abierta para la misma mesa.
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error)
	// Update persiste la cabecera (estado, totales, tasa de servicio, cierre, aviso de cobro).
	Update(ctx context.Context, ticket *entity.Ticket) error
	ListOpenByUnit(ctx context.Context, unitID string) ([]*entity.Ticket, error)
	// ListClosedBetween cuentas cerradas de la unidad con closed_at en [from, to).
	ListClosedBetween(ctx context.Context, unitID string, from, to time.Time) ([]*entity.Ticket, error)

	AddItem(ctx context.Context, item *entity.LineItem) error
	UpdateItem(ctx context.Context, item *entity.LineItem) error
	DeleteItem(ctx context.Context, itemID string) error
	GetItem(ctx context.Context, itemID string) (*entity.LineItem, error)
}
