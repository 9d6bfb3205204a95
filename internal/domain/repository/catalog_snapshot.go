package repository

import (
	"context"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// CatalogSnapshot vista de solo lectura del catálogo, propiedad de la gestión de catálogo.
// Devuelve *entity.SimpleProduct o *entity.ComboProduct; domain.ErrNotFound si no existe.
// El precio es el de la unidad cuando tiene uno propio y, si no, el precio base del producto.
type CatalogSnapshot interface {
	GetProduct(ctx context.Context, unitID, id string) (entity.Product, error)
}
