// Package inventory descompone las líneas vendidas en los descuentos de stock que producen.
package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// Decrement descuento a aplicar sobre un producto simple.
type Decrement struct {
	ProductID string
	Delta     decimal.Decimal // siempre negativo
	// SourceProductID producto vendido que originó el descuento (el combo, si aplica).
	SourceProductID string
}

// Explode convierte las líneas de una cuenta en descuentos de stock.
// Un producto simple produce un descuento de -cantidad; un combo produce uno por componente
// de -(k × cantidad) y nunca un descuento sobre el propio combo.
// El resultado se ordena por ProductID (estable) para que todas las terminales bloqueen
// las filas de saldo en el mismo orden.
func Explode(lines []entity.LineItem, products map[string]entity.Product) ([]Decrement, error) {
	out := make([]Decrement, 0, len(lines))
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		switch prod := p.(type) {
		case *entity.SimpleProduct:
			out = append(out, Decrement{
				ProductID:       prod.ID,
				Delta:           line.Quantity.Neg(),
				SourceProductID: prod.ID,
			})
		case *entity.ComboProduct:
			if len(prod.Components) == 0 {
				return nil, domain.Invalid("product_id", fmt.Sprintf("combo %s sin componentes", prod.ID))
			}
			for _, c := range prod.Components {
				out = append(out, Decrement{
					ProductID:       c.ProductID,
					Delta:           c.QuantityPerUnit.Mul(line.Quantity).Neg(),
					SourceProductID: prod.ID,
				})
			}
		default:
			return nil, fmt.Errorf("%w: variante de producto desconocida %T", domain.ErrInvariantViolation, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
