package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo materializado de un producto en una unidad (suma de los deltas de sus movimientos).
// Puede quedar negativo: las ventas no tienen tope de stock.
type StockBalance struct {
	UnitID    string
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
