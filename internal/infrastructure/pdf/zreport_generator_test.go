package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/pdf"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestZReportGenerator_Render(t *testing.T) {
	opened := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	rep := &entity.AuditReport{
		ShiftID:      "5f1c1f7e-3a43-4f3f-9a57-0c4d0e0f1a2b",
		UnitID:       "loja-centro",
		OpenedBy:     "ana",
		ClosedBy:     "gerente",
		OpenedAt:     opened,
		ClosedAt:     opened.Add(10 * time.Hour),
		OpeningFloat: d("150.00"),
		TenderBreakdown: []entity.TenderTotal{
			{Method: "Dinheiro", Amount: d("47.50"), IsCash: true},
			{Method: "Pix", Amount: d("1230.00")},
		},
		CashTotal:           d("47.50"),
		ExpectedCash:        d("197.50"),
		DeclaredCash:        d("195.00"),
		CashVariance:        d("-2.50"),
		NetRevenue:          d("1277.50"),
		SettledTicketIDs:    []string{"t-1", "t-2"},
		UntenderedTicketIDs: []string{"t-2"},
	}

	out, err := pdf.NewZReportGenerator("").Render(rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "no parece un PDF")
}

func TestZReportGenerator_EmptyShift(t *testing.T) {
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	out, err := pdf.NewZReportGenerator("Z").Render(&entity.AuditReport{ShiftID: "s", UnitID: "u", OpenedAt: now, ClosedAt: now})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestZReportGenerator_NilReport(t *testing.T) {
	_, err := pdf.NewZReportGenerator("").Render(nil)
	assert.Error(t, err)
}
