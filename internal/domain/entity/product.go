package entity

import "github.com/shopspring/decimal"

// Modos de precio del catálogo.
const (
	PricingModeUnit   = "unit"   // por unidad, cantidades enteras
	PricingModeWeight = "weight" // por peso (kg), cantidades fraccionarias
)

// Product es la vista de solo lectura de un producto del catálogo.
// Es una variante cerrada: SimpleProduct o ComboProduct. El motor nunca escribe en el catálogo.
type Product interface {
	ProductID() string
	DisplayName() string
	Price() decimal.Decimal
	Pricing() string
	sealed()
}

// SimpleProduct producto vendido y descontado del inventario por sí mismo.
type SimpleProduct struct {
	ID          string
	Name        string
	PricingMode string
	UnitPrice   decimal.Decimal
}

func (p *SimpleProduct) ProductID() string      { return p.ID }
func (p *SimpleProduct) DisplayName() string    { return p.Name }
func (p *SimpleProduct) Price() decimal.Decimal { return p.UnitPrice }
func (p *SimpleProduct) Pricing() string        { return p.PricingMode }
func (*SimpleProduct) sealed()                  {}

// ComboProduct kit vendido por unidad cuyo efecto en inventario se define solo por sus componentes.
type ComboProduct struct {
	ID         string
	Name       string
	UnitPrice  decimal.Decimal
	Components []ComboComponent
}

func (p *ComboProduct) ProductID() string      { return p.ID }
func (p *ComboProduct) DisplayName() string    { return p.Name }
func (p *ComboProduct) Price() decimal.Decimal { return p.UnitPrice }
func (*ComboProduct) Pricing() string          { return PricingModeUnit }
func (*ComboProduct) sealed()                  {}

// ComboComponent cantidad de un producto simple consumida por cada unidad del combo.
type ComboComponent struct {
	ProductID       string
	QuantityPerUnit decimal.Decimal
}

// ValidPricingMode indica si el modo de precio es conocido.
func ValidPricingMode(mode string) bool {
	return mode == PricingModeUnit || mode == PricingModeWeight
}

// WithUnitPrice devuelve una copia de p con otro precio (precio propio de una unidad).
func WithUnitPrice(p Product, price decimal.Decimal) Product {
	switch v := p.(type) {
	case *SimpleProduct:
		c := *v
		c.UnitPrice = price
		return &c
	case *ComboProduct:
		c := *v
		c.UnitPrice = price
		return &c
	}
	return p
}
