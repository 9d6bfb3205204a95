package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest entrada o baja en la unidad del operador. Note es obligatorio en bajas.
type StockMovementRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note"`
}

// TransferRequest envío desde la unidad del operador hacia otra unidad.
type TransferRequest struct {
	ToUnitID  string          `json:"to_unit_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note"`
}

// MovementListRequest filtros de GET /api/inventory/movements.
type MovementListRequest struct {
	PageRequest
	ProductID string `query:"product_id"`
	Kind      string `query:"kind"`
	From      string `query:"from"` // RFC3339
	To        string `query:"to"`
}

// StockMovementResponse movimiento de inventario.
type StockMovementResponse struct {
	ID                    string          `json:"id"`
	UnitID                string          `json:"unit_id"`
	ProductID             string          `json:"product_id"`
	Kind                  string          `json:"kind"`
	Delta                 decimal.Decimal `json:"delta"`
	BalanceBefore         decimal.Decimal `json:"balance_before"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	Actor                 string          `json:"actor"`
	CreatedAt             time.Time       `json:"created_at"`
	Note                  string          `json:"note,omitempty"`
	Reference             string          `json:"reference,omitempty"`
	TransferID            string          `json:"transfer_id,omitempty"`
	CounterpartUnitID     string          `json:"counterpart_unit_id,omitempty"`
	CounterpartMovementID string          `json:"counterpart_movement_id,omitempty"`
}

// StockBalanceResponse saldo por producto.
type StockBalanceResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransferResponse ambas patas de la transferencia.
type TransferResponse struct {
	ID  string                `json:"id"`
	Out StockMovementResponse `json:"out"`
	In  StockMovementResponse `json:"in"`
}

// DiscrepancyResponse saldo que no coincide con la suma de movimientos.
type DiscrepancyResponse struct {
	ProductID     string          `json:"product_id"`
	Balance       decimal.Decimal `json:"balance"`
	MovementTotal decimal.Decimal `json:"movement_total"`
}

// ConsistencyResponse resultado de la verificación saldo vs. movimientos.
type ConsistencyResponse struct {
	UnitID        string                `json:"unit_id"`
	Consistent    bool                  `json:"consistent"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}
