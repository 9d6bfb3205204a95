package shift

import (
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// Digest código de verificación del Z-report: SHA-384 (hex) de las cifras del cierre concatenadas
// en orden fijo, sin separadores de miles y con punto decimal.
//
// Cadena: ShiftID + UnitID + ClosedAt(RFC3339, UTC) + OpeningFloat + por cada forma de pago
// (ordenadas) Method + Amount + ExpectedCash + DeclaredCash + CashVariance + NetRevenue +
// SettledTicketIDs (ordenados, separados por ',').
func Digest(rep *entity.AuditReport) string {
	if rep == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(rep.ShiftID)
	b.WriteString(rep.UnitID)
	b.WriteString(rep.ClosedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	b.WriteString(rep.OpeningFloat.StringFixed(2))

	totals := append([]entity.TenderTotal(nil), rep.TenderBreakdown...)
	sort.Slice(totals, func(i, j int) bool { return totals[i].Method < totals[j].Method })
	for _, t := range totals {
		b.WriteString(t.Method)
		b.WriteString(t.Amount.StringFixed(2))
	}

	b.WriteString(rep.ExpectedCash.StringFixed(2))
	b.WriteString(rep.DeclaredCash.StringFixed(2))
	b.WriteString(rep.CashVariance.StringFixed(2))
	b.WriteString(rep.NetRevenue.StringFixed(2))

	ids := append([]string(nil), rep.SettledTicketIDs...)
	sort.Strings(ids)
	b.WriteString(strings.Join(ids, ","))

	sum := sha512.Sum384([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
