package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario. Enumeración cerrada: la auditoría agrega por estos valores.
const (
	MovementKindEntry       = "entry"
	MovementKindSale        = "sale"
	MovementKindDiscard     = "discard"
	MovementKindTransferIn  = "transfer_in"
	MovementKindTransferOut = "transfer_out"
)

// ValidMovementKind indica si kind pertenece a la enumeración.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindEntry, MovementKindSale, MovementKindDiscard, MovementKindTransferIn, MovementKindTransferOut:
		return true
	}
	return false
}

// StockMovement registro append-only de un cambio de saldo en (unidad, producto).
type StockMovement struct {
	ID            string
	UnitID        string
	ProductID     string
	Kind          string
	Delta         decimal.Decimal // con signo
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Actor         string
	CreatedAt     time.Time
	Note          string
	Reference     string // id de la cuenta en ventas

	// Trazabilidad de transferencias: ambas patas comparten TransferID y se referencian entre sí.
	TransferID            string
	CounterpartUnitID     string
	CounterpartMovementID string
}

// MovementFilter criterios para listar movimientos.
type MovementFilter struct {
	UnitID    string
	ProductID string
	Kind      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
