package settlement_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/settlement"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDue_TableWithServiceCharge(t *testing.T) {
	lines := []entity.LineItem{
		{ProductID: "pao", Quantity: d("3"), UnitPrice: d("2.00"), LineTotal: entity.LineTotalFor(d("3"), d("2.00"))},
		{ProductID: "queijo", Quantity: d("0.25"), UnitPrice: d("40.00"), LineTotal: entity.LineTotalFor(d("0.25"), d("40.00"))},
	}
	due := settlement.Due(lines, d("10"))
	assert.True(t, d("17.60").Equal(due), "due = %s", due)
}

func TestEvaluate(t *testing.T) {
	due := d("47.50")
	tests := []struct {
		name    string
		tenders []settlement.Proposed
		status  settlement.Status
		change  string
		balance string
	}{
		{"sin pagos", nil, settlement.StatusInsufficient, "0", "47.50"},
		{"parcial", []settlement.Proposed{{MethodID: "pix", Amount: d("20")}}, settlement.StatusInsufficient, "0", "27.50"},
		{"exacto", []settlement.Proposed{{MethodID: "pix", Amount: d("20")}, {MethodID: "cash", Amount: d("27.50")}}, settlement.StatusExact, "0", "0"},
		{"con cambio", []settlement.Proposed{{MethodID: "cash", Amount: d("50")}}, settlement.StatusOverpaid, "2.50", "-2.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := settlement.Evaluate(due, tt.tenders)
			assert.Equal(t, tt.status, st.Status)
			assert.True(t, d(tt.change).Equal(st.Change), "change = %s", st.Change)
			assert.True(t, d(tt.balance).Equal(st.Balance), "balance = %s", st.Balance)
			assert.Equal(t, tt.status != settlement.StatusInsufficient, st.CanFinalize())
		})
	}
}

func TestValidateTenders(t *testing.T) {
	assert.ErrorIs(t, settlement.ValidateTenders(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, settlement.ValidateTenders([]settlement.Proposed{{MethodID: "pix", Amount: d("0")}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, settlement.ValidateTenders([]settlement.Proposed{{MethodID: "pix", Amount: d("1.005")}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, settlement.ValidateTenders([]settlement.Proposed{{Amount: d("1")}}), domain.ErrInvalidInput)
	assert.NoError(t, settlement.ValidateTenders([]settlement.Proposed{{MethodID: "pix", Amount: d("10.50")}}))
}

func TestCashClassifier(t *testing.T) {
	cls := settlement.NewCashClassifier("dinheiro")
	assert.True(t, cls.IsCash("Dinheiro"))
	assert.True(t, cls.IsCash("DINHEIRO (gaveta 2)"))
	assert.False(t, cls.IsCash("Pix"))
	assert.False(t, cls.IsCash("Cartão de Crédito"))

	accented := settlement.NewCashClassifier("Espécie")
	assert.True(t, accented.IsCash("ESPÉCIE"))

	assert.False(t, settlement.NewCashClassifier("  ").IsCash("Dinheiro"))
}

func TestAllocateChange_FirstCashTenderAbsorbs(t *testing.T) {
	cls := settlement.NewCashClassifier("dinheiro")
	tenders := []settlement.Proposed{
		{MethodID: "pix", MethodName: "Pix", Amount: d("10")},
		{MethodID: "cash", MethodName: "Dinheiro", Amount: d("5")},
		{MethodID: "cash", MethodName: "Dinheiro", Amount: d("50")},
	}
	out, err := settlement.AllocateChange(tenders, d("7.50"), cls)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0].IsZero())
	assert.True(t, d("5").Equal(out[1]))
	assert.True(t, d("2.50").Equal(out[2]))
}

func TestAllocateChange_ExceedsCash(t *testing.T) {
	cls := settlement.NewCashClassifier("dinheiro")
	tenders := []settlement.Proposed{
		{MethodID: "credito", MethodName: "Crédito", Amount: d("60")},
		{MethodID: "cash", MethodName: "Dinheiro", Amount: d("1")},
	}
	_, err := settlement.AllocateChange(tenders, d("12.50"), cls)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestAllocateChange_NoChange(t *testing.T) {
	cls := settlement.NewCashClassifier("dinheiro")
	out, err := settlement.AllocateChange([]settlement.Proposed{{MethodName: "Pix", Amount: d("10")}}, decimal.Zero, cls)
	require.NoError(t, err)
	assert.True(t, out[0].IsZero())
}
