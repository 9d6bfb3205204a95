package ports

import (
	"context"

	"github.com/ricazo/pos-engine/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Shifts    repository.ShiftRepository
	Tickets   repository.TicketRepository
	Tenders   repository.TenderRepository
	Stock     repository.StockRepository
	Movements repository.StockMovementRepository
}

// TxRunner ejecuta fn dentro de una unidad de trabajo: Commit si fn devuelve nil, Rollback en otro caso.
// Los fallos de Begin/Commit se devuelven envueltos en domain.ErrPersistence.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
