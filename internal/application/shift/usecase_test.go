package shift_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/application/shift"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/memory"
	"github.com/ricazo/pos-engine/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type stubRenderer struct{ got *entity.AuditReport }

func (r *stubRenderer) Render(rep *entity.AuditReport) ([]byte, error) {
	r.got = rep
	return []byte("%PDF-stub"), nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newUseCase(t *testing.T) (*shift.UseCase, *memory.Store, *stubRenderer, *clock) {
	t.Helper()
	s := memory.New()
	r := &stubRenderer{}
	c := &clock{t: time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)}
	uc := shift.NewUseCase(s, s.Shifts(), r, "dinheiro", logger.Nop()).WithClock(c.Now)
	return uc, s, r, c
}

// closedTicket registra una cuenta ya liquidada, como lo deja el motor de pagos.
func closedTicket(t *testing.T, s *memory.Store, id string, closedAt time.Time, total string, tenders ...entity.Tender) {
	t.Helper()
	ctx := context.Background()
	err := s.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		tk := &entity.Ticket{ID: id, UnitID: "u1", Kind: entity.TicketKindCounter, Status: entity.TicketStatusClosed, Total: d(total), ClosedAt: &closedAt}
		if err := repos.Tickets.Create(ctx, tk); err != nil {
			return err
		}
		batch := make([]*entity.Tender, 0, len(tenders))
		for i := range tenders {
			tn := tenders[i]
			tn.TicketID = id
			batch = append(batch, &tn)
		}
		return repos.Tenders.CreateBatch(ctx, batch)
	})
	require.NoError(t, err)
}

func TestOpenShift_OnePerUnit(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newUseCase(t)

	sh, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("150")})
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftStatusOpen, sh.Status)

	_, err = uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "bia", OpeningFloat: d("10")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	cur, err := uc.CurrentShift(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, sh.ID, cur.ID)

	_, err = uc.CurrentShift(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenShift_ConcurrentTerminals(t *testing.T) {
	ctx := context.Background()
	uc, s, _, _ := newUseCase(t)

	const terminals = 10
	var wg sync.WaitGroup
	errs := make([]error, terminals)
	for i := 0; i < terminals; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "t", OpeningFloat: d("0")})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.Equal(t, 1, ok)
	list, err := s.Shifts().ListByUnit(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpenShift_Validation(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newUseCase(t)
	_, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.OpenShift(ctx, shift.OpenInput{OpenedBy: "ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("1.001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCloseShift_ReconcilesWindow(t *testing.T) {
	ctx := context.Background()
	uc, s, _, c := newUseCase(t)

	before := c.Now()
	sh, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("150.00")})
	require.NoError(t, err)

	closedTicket(t, s, "old", before, "99", entity.Tender{ID: "x", MethodName: "Dinheiro", Amount: d("99")})
	closedTicket(t, s, "t1", c.Now(), "47.50", entity.Tender{ID: "a", MethodID: "dinheiro", MethodName: "Dinheiro", Amount: d("50"), ChangeGiven: d("2.50")})
	closedTicket(t, s, "t2", c.Now(), "20", entity.Tender{ID: "b", MethodID: "pix", MethodName: "Pix", Amount: d("20")})
	closedTicket(t, s, "t3", c.Now(), "8.40")

	rep, err := uc.CloseShift(ctx, shift.CloseInput{ShiftID: sh.ID, DeclaredCash: d("195.00"), ClosedBy: "ana"})
	require.NoError(t, err)

	assert.True(t, d("75.90").Equal(rep.NetRevenue), "net = %s", rep.NetRevenue)
	assert.True(t, d("197.50").Equal(rep.ExpectedCash))
	assert.True(t, d("-2.50").Equal(rep.CashVariance))
	assert.Equal(t, "shortage", rep.VarianceKind())
	assert.True(t, d("47.50").Equal(rep.CashTotal))
	assert.Equal(t, []string{"t1", "t2", "t3"}, rep.SettledTicketIDs)
	assert.Equal(t, []string{"t3"}, rep.UntenderedTicketIDs)
	require.Len(t, rep.TenderBreakdown, 2)
	assert.Equal(t, "Dinheiro", rep.TenderBreakdown[0].Method)
	assert.True(t, rep.TenderBreakdown[0].IsCash)

	stored, err := uc.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftStatusClosed, stored.Status)
	require.NotNil(t, stored.CashVariance)
	assert.True(t, d("-2.50").Equal(*stored.CashVariance))
}

func TestCloseShift_NeverRecomputes(t *testing.T) {
	ctx := context.Background()
	uc, s, r, c := newUseCase(t)
	sh, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("100")})
	require.NoError(t, err)

	first, err := uc.CloseShift(ctx, shift.CloseInput{ShiftID: sh.ID, DeclaredCash: d("100"), ClosedBy: "ana"})
	require.NoError(t, err)
	assert.True(t, first.CashVariance.IsZero())

	closedTicket(t, s, "late", c.Now(), "30", entity.Tender{ID: "z", MethodName: "Dinheiro", Amount: d("30")})
	_, err = uc.CloseShift(ctx, shift.CloseInput{ShiftID: sh.ID, DeclaredCash: d("500"), ClosedBy: "bia"})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
	_, err = uc.RequestClose(ctx, sh.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	again, err := uc.GetReport(ctx, sh.ID)
	require.NoError(t, err)
	assert.True(t, again.DeclaredCash.Equal(d("100")))
	assert.Equal(t, "ana", again.ClosedBy)
	assert.Empty(t, again.SettledTicketIDs)
	assert.Len(t, first.Digest, 96)
	assert.Equal(t, first.Digest, again.Digest, "el código de verificación se reconstruye igual")

	pdf, err := uc.RenderReportPDF(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-stub", string(pdf))
	require.NotNil(t, r.got)
	assert.Equal(t, sh.ID, r.got.ShiftID)
}

func TestCloseShift_NotFound(t *testing.T) {
	uc, _, _, _ := newUseCase(t)
	_, err := uc.CloseShift(context.Background(), shift.CloseInput{ShiftID: "nope", DeclaredCash: d("0"), ClosedBy: "ana"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestClose_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newUseCase(t)
	sh, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("0")})
	require.NoError(t, err)

	first, err := uc.RequestClose(ctx, sh.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CloseRequestedAt)
	assert.False(t, first.AcceptsSettlement())

	second, err := uc.RequestClose(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.CloseRequestedAt, *second.CloseRequestedAt)

	_, err = uc.GetReport(ctx, sh.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListShifts_NewestFirst(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newUseCase(t)
	var ids []string
	for i := 0; i < 3; i++ {
		sh, err := uc.OpenShift(ctx, shift.OpenInput{UnitID: "u1", OpenedBy: "ana", OpeningFloat: d("0")})
		require.NoError(t, err)
		_, err = uc.CloseShift(ctx, shift.CloseInput{ShiftID: sh.ID, DeclaredCash: d("0"), ClosedBy: "ana"})
		require.NoError(t, err)
		ids = append(ids, sh.ID)
	}
	list, err := uc.ListShifts(ctx, "u1", 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
}
