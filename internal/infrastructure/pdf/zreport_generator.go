// Package pdf genera la versión imprimible del Z-report (cierre de turno).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Unidad + turno      │  Apertura / Cierre           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OPERADORES: apertura / cierre                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Forma de pago | Efectivo | Neto                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ARQUEO: Fondo / Efectivo / Esperado / Declarado / Dif.     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: cuentas liquidadas + QR de verificación            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 120, Green: 72, Blue: 28}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

const timeLayout = "02/01/2006 15:04"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.ZReportRenderer = (*ZReportGenerator)(nil)

// ZReportGenerator implementa ports.ZReportRenderer usando Maroto v2.
type ZReportGenerator struct {
	title string
}

// NewZReportGenerator construye el generador. title aparece en los metadatos del PDF.
func NewZReportGenerator(title string) *ZReportGenerator {
	if title == "" {
		title = "Fechamento de Caixa"
	}
	return &ZReportGenerator{title: title}
}

// Render genera el PDF del cierre y devuelve sus bytes.
func (g *ZReportGenerator) Render(rep *entity.AuditReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("pdf: reporte nulo")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		WithAuthor(rep.UnitID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(operatorsRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range breakdownRows(rep.TenderBreakdown) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(cashRow(rep))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(rep) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep *entity.AuditReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("FECHAMENTO DE CAIXA (Z)", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Unidade: "+rep.UnitID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Turno "+shortID(rep.ShiftID), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Abertura: "+rep.OpenedAt.Format(timeLayout), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
			text.New("Fechamento: "+rep.ClosedAt.Format(timeLayout), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func operatorsRow(rep *entity.AuditReport) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Aberto por: %s   |   Fechado por: %s",
				nonEmpty(rep.OpenedBy, "-"),
				nonEmpty(rep.ClosedBy, "-"),
			), props.Text{Size: 8, Top: 3, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Forma de pagamento", 7, align.Left),
		h("Espécie", 2, align.Center),
		h("Líquido", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// breakdownRows una fila por forma de pago, ya ordenadas por el reporte.
func breakdownRows(totals []entity.TenderTotal) []core.Row {
	result := make([]core.Row, 0, len(totals))
	for _, t := range totals {
		cash := ""
		if t.IsCash {
			cash = "sim"
		}
		result = append(result, row.New(7).Add(
			col.New(7).Add(text.New(t.Method, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(cash, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(money(t.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(7).Add(col.New(12).Add(
			text.New("Nenhum pagamento no turno", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		)))
	}
	return result
}

// cashRow bloque del arqueo alineado a la derecha.
func cashRow(rep *entity.AuditReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	varianceColor := colorPrimary
	if rep.CashVariance.IsNegative() {
		varianceColor = colorRed
	}

	return row.New(38).Add(
		col.New(3),
		col.New(4).Add(
			label("Receita líquida:"),
			label("Fundo de troco:"),
			label("Dinheiro líquido:"),
			label("Esperado em caixa:"),
			label("Declarado:"),
			text.New("Diferença ("+varianceLabel(rep)+"):", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: varianceColor, Right: 2,
			}),
		),
		col.New(3).Add(
			value(money(rep.NetRevenue)),
			value(money(rep.OpeningFloat)),
			value(money(rep.CashTotal)),
			value(money(rep.ExpectedCash)),
			value(money(rep.DeclaredCash)),
			text.New(money(rep.CashVariance), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: varianceColor, Right: 1,
			}),
		),
		col.New(2),
	)
}

// footerRows cuentas liquidadas y un QR con las cifras para verificar el cierre.
func footerRows(rep *entity.AuditReport) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("CONTAS LIQUIDADAS: %d", len(rep.SettledTicketIDs)), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(strings.Join(rep.SettledTicketIDs, "  "), 110) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	if n := len(rep.UntenderedTicketIDs); n > 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Atenção: %d conta(s) fechada(s) sem pagamento registrado", n), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorRed, Top: 1,
			}),
		)))
	}

	rows = append(rows, row.New(3))
	rows = append(rows, row.New(40).Add(
		col.New(3).Add(code.NewQr(verificationPayload(rep), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Resumo imutável do turno.\nConfira as contas liquidadas contra os pagamentos registrados.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Código de verificação: "+rep.Digest, props.Text{
				Size: 6.5, Top: 16, Left: 3, Color: colorGray,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func verificationPayload(rep *entity.AuditReport) string {
	return fmt.Sprintf("shift=%s;expected=%s;declared=%s;variance=%s;net=%s;tickets=%d;digest=%s",
		rep.ShiftID,
		rep.ExpectedCash.StringFixed(2),
		rep.DeclaredCash.StringFixed(2),
		rep.CashVariance.StringFixed(2),
		rep.NetRevenue.StringFixed(2),
		len(rep.SettledTicketIDs),
		rep.Digest,
	)
}

func varianceLabel(rep *entity.AuditReport) string {
	switch rep.VarianceKind() {
	case "shortage":
		return "falta"
	case "overage":
		return "sobra"
	default:
		return "exato"
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// money formatea en reales: "R$ 1.234,56", con signo para diferencias negativas.
func money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles. Ej: "1000000" → "1.000.000".
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
