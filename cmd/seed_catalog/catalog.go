package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// row producto leído de la planilla. Components vacío para productos simples.
type row struct {
	ID          string
	Name        string
	PricingMode string
	UnitPrice   decimal.Decimal
	Components  []entity.ComboComponent
	UnitPrices  []unitPrice // precios propios por unidad, ordenados por unidad
}

type unitPrice struct {
	UnitID string
	Price  decimal.Decimal
}

func (r row) isCombo() bool { return len(r.Components) > 0 }

// decoderFor envuelve input según la codificación declarada. Las planillas exportadas
// por el PDV anterior salen en Windows-1252.
func decoderFor(encoding string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return input, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada %q", encoding)
	}
}

// parseCatalog lee id;nome;modo;preco;componentes;precos_unidade.
// Componentes: "cafe-expresso:1|croissant:2". Precios por unidad: "loja-praia=19,90|loja-centro=18,50".
// Acepta coma decimal en precios y cantidades.
func parseCatalog(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("planilla vacía")
	}

	var out []row
	seen := map[string]bool{}
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 4 columnas", line)
		}
		p := row{
			ID:          strings.TrimSpace(rec[0]),
			Name:        strings.TrimSpace(rec[1]),
			PricingMode: strings.ToLower(strings.TrimSpace(rec[2])),
		}
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("línea %d: id y nombre son obligatorios", line)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("línea %d: producto %s repetido", line, p.ID)
		}
		seen[p.ID] = true
		if !entity.ValidPricingMode(p.PricingMode) {
			return nil, fmt.Errorf("línea %d: modo de precio %q", line, rec[2])
		}
		if p.UnitPrice, err = parseDecimal(rec[3]); err != nil || p.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio %q inválido", line, rec[3])
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			if p.PricingMode != entity.PricingModeUnit {
				return nil, fmt.Errorf("línea %d: un combo se vende por unidad", line)
			}
			if p.Components, err = parseComponents(p.ID, rec[4]); err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
		}
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			if p.UnitPrices, err = parseUnitPrices(rec[5]); err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
		}
		out = append(out, p)
	}

	// los componentes deben ser productos simples de la misma planilla
	byID := make(map[string]row, len(out))
	for _, p := range out {
		byID[p.ID] = p
	}
	for _, p := range out {
		for _, c := range p.Components {
			comp, ok := byID[c.ProductID]
			if !ok {
				return nil, fmt.Errorf("combo %s: componente %s no está en la planilla", p.ID, c.ProductID)
			}
			if comp.isCombo() {
				return nil, fmt.Errorf("combo %s: el componente %s también es combo", p.ID, c.ProductID)
			}
		}
	}
	return out, nil
}

func parseComponents(comboID, field string) ([]entity.ComboComponent, error) {
	var comps []entity.ComboComponent
	for _, part := range strings.Split(field, "|") {
		id, qty, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("componente %q: formato id:cantidad", part)
		}
		id = strings.TrimSpace(id)
		if id == comboID {
			return nil, fmt.Errorf("el combo %s no puede contenerse a sí mismo", comboID)
		}
		q, err := parseDecimal(qty)
		if err != nil || !q.IsPositive() {
			return nil, fmt.Errorf("componente %s: cantidad %q inválida", id, qty)
		}
		comps = append(comps, entity.ComboComponent{ProductID: id, QuantityPerUnit: q})
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].ProductID < comps[j].ProductID })
	return comps, nil
}

func parseUnitPrices(field string) ([]unitPrice, error) {
	var prices []unitPrice
	seen := map[string]bool{}
	for _, part := range strings.Split(field, "|") {
		unit, price, ok := strings.Cut(strings.TrimSpace(part), "=")
		unit = strings.TrimSpace(unit)
		if !ok || unit == "" {
			return nil, fmt.Errorf("precio por unidad %q: formato unidade=preco", part)
		}
		if seen[unit] {
			return nil, fmt.Errorf("unidad %s repetida", unit)
		}
		seen[unit] = true
		p, err := parseDecimal(price)
		if err != nil || p.IsNegative() {
			return nil, fmt.Errorf("unidad %s: precio %q inválido", unit, price)
		}
		prices = append(prices, unitPrice{UnitID: unit, Price: p})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].UnitID < prices[j].UnitID })
	return prices, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// writeSQL emite upserts idempotentes: primero los productos, después la composición de los combos
// y los precios por unidad. Un producto sin precios por unidad en la planilla conserva los que tenga.
func writeSQL(w io.Writer, rows []row, source string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Catálogo generado desde %s\n\nBEGIN;\n\n", source)
	for _, p := range rows {
		fmt.Fprintf(&b, "INSERT INTO products (id, name, pricing_mode, unit_price, is_combo)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %s, %t)\n", escapeSQL(p.ID), escapeSQL(p.Name), p.PricingMode, p.UnitPrice.StringFixed(2), p.isCombo())
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, pricing_mode = EXCLUDED.pricing_mode,\n")
		b.WriteString("  unit_price = EXCLUDED.unit_price, is_combo = EXCLUDED.is_combo;\n")
	}
	for _, p := range rows {
		if !p.isCombo() {
			continue
		}
		fmt.Fprintf(&b, "\nDELETE FROM product_components WHERE combo_id = '%s';\n", escapeSQL(p.ID))
		for _, c := range p.Components {
			fmt.Fprintf(&b, "INSERT INTO product_components (combo_id, component_id, quantity_per_unit) VALUES ('%s', '%s', %s);\n",
				escapeSQL(p.ID), escapeSQL(c.ProductID), c.QuantityPerUnit.String())
		}
	}
	for _, p := range rows {
		if len(p.UnitPrices) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nDELETE FROM product_prices WHERE product_id = '%s';\n", escapeSQL(p.ID))
		for _, up := range p.UnitPrices {
			fmt.Fprintf(&b, "INSERT INTO product_prices (product_id, unit_id, price) VALUES ('%s', '%s', %s);\n",
				escapeSQL(p.ID), escapeSQL(up.UnitID), up.Price.StringFixed(2))
		}
	}
	b.WriteString("\nCOMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// productIDs ids cargados, en el orden de la planilla.
func productIDs(rows []row) []string {
	ids := make([]string, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	return ids
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
