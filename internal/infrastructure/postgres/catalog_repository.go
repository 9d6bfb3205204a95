package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.CatalogSnapshot = (*CatalogRepo)(nil)

// CatalogRepo lectura del catálogo (products, product_prices y product_components). El motor nunca escribe aquí.
type CatalogRepo struct {
	q Querier
}

func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) GetProduct(ctx context.Context, unitID, id string) (entity.Product, error) {
	var (
		name, mode string
		price      decimal.Decimal
		isCombo    bool
	)
	err := r.q.QueryRow(ctx,
		`SELECT p.name, p.pricing_mode, COALESCE(pp.price, p.unit_price), p.is_combo
		FROM products p
		LEFT JOIN product_prices pp ON pp.product_id = p.id AND pp.unit_id = $2
		WHERE p.id = $1`, id, unitID,
	).Scan(&name, &mode, &price, &isCombo)
	if err != nil {
		return nil, mapErr(err, "producto "+id)
	}
	if !isCombo {
		return &entity.SimpleProduct{ID: id, Name: name, PricingMode: mode, UnitPrice: price}, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT component_id, quantity_per_unit
		FROM product_components WHERE combo_id = $1
		ORDER BY component_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list combo components: %w", err)
	}
	defer rows.Close()
	combo := &entity.ComboProduct{ID: id, Name: name, UnitPrice: price}
	for rows.Next() {
		var c entity.ComboComponent
		if err := rows.Scan(&c.ProductID, &c.QuantityPerUnit); err != nil {
			return nil, err
		}
		combo.Components = append(combo.Components, c)
	}
	return combo, rows.Err()
}
