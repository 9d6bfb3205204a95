package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// DemoUnitID unidad que recibe el stock inicial en NewSeeded.
const DemoUnitID = "loja-centro"

// NewSeeded crea un almacén con un catálogo de padaria y stock inicial registrado como entradas,
// para levantar el servicio sin base de datos.
func NewSeeded() *Store {
	s := New()
	products := []entity.Product{
		&entity.SimpleProduct{ID: "pao-frances", Name: "Pão Francês", PricingMode: entity.PricingModeWeight, UnitPrice: decimal.RequireFromString("18.90")},
		&entity.SimpleProduct{ID: "queijo-minas", Name: "Queijo Minas", PricingMode: entity.PricingModeWeight, UnitPrice: decimal.RequireFromString("42.00")},
		&entity.SimpleProduct{ID: "croissant", Name: "Croissant", PricingMode: entity.PricingModeUnit, UnitPrice: decimal.RequireFromString("7.50")},
		&entity.SimpleProduct{ID: "cafe-expresso", Name: "Café Expresso", PricingMode: entity.PricingModeUnit, UnitPrice: decimal.RequireFromString("5.00")},
		&entity.SimpleProduct{ID: "pao-de-queijo", Name: "Pão de Queijo", PricingMode: entity.PricingModeUnit, UnitPrice: decimal.RequireFromString("4.50")},
		&entity.ComboProduct{ID: "kit-manha", Name: "Kit Manhã", UnitPrice: decimal.RequireFromString("17.00"), Components: []entity.ComboComponent{
			{ProductID: "cafe-expresso", QuantityPerUnit: decimal.NewFromInt(1)},
			{ProductID: "croissant", QuantityPerUnit: decimal.NewFromInt(2)},
		}},
	}
	for _, p := range products {
		s.PutProduct(p)
	}

	initial := map[string]decimal.Decimal{
		"pao-frances":   decimal.RequireFromString("25"),
		"queijo-minas":  decimal.RequireFromString("8"),
		"croissant":     decimal.NewFromInt(60),
		"cafe-expresso": decimal.NewFromInt(200),
		"pao-de-queijo": decimal.NewFromInt(120),
	}
	now := time.Now().UTC()
	for _, p := range products {
		qty, ok := initial[p.ProductID()]
		if !ok {
			continue
		}
		k := stockKey{DemoUnitID, p.ProductID()}
		s.st.balances[k] = entity.StockBalance{UnitID: DemoUnitID, ProductID: p.ProductID(), Quantity: qty, UpdatedAt: now}
		s.st.movements = append(s.st.movements, entity.StockMovement{
			ID:            uuid.New().String(),
			UnitID:        DemoUnitID,
			ProductID:     p.ProductID(),
			Kind:          entity.MovementKindEntry,
			Delta:         qty,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  qty,
			Actor:         "seed",
			CreatedAt:     now,
			Note:          "estoque inicial",
		})
	}
	return s
}
