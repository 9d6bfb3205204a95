package payment

import (
	"context"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// InventoryUseCase interfaz para integrar la liquidación con el libro de inventario.
// DecrementForSale usa los repositorios del caller (misma transacción); si retorna error,
// el caller hace rollback y la cuenta sigue abierta.
type InventoryUseCase interface {
	DecrementForSale(
		ctx context.Context,
		repos ports.TxRepos,
		unitID string,
		lines []entity.LineItem,
		products map[string]entity.Product,
		actor, reference string,
	) ([]*entity.StockMovement, error)
}
