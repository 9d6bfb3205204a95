// Package shift gestiona el turno de caja: apertura, pedido de cierre y cierre con arqueo ciego.
package shift

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/internal/domain/settlement"
	shiftdomain "github.com/ricazo/pos-engine/internal/domain/shift"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// UseCase casos de uso del turno de caja.
type UseCase struct {
	txRunner ports.TxRunner
	shifts   repository.ShiftRepository
	renderer ports.ZReportRenderer
	cash     *settlement.CashClassifier
	log      *logger.Logger
	now      ports.Clock
}

// NewUseCase construye el caso de uso. cashLabel identifica las formas de pago en efectivo.
func NewUseCase(
	txRunner ports.TxRunner,
	shifts repository.ShiftRepository,
	renderer ports.ZReportRenderer,
	cashLabel string,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		shifts:   shifts,
		renderer: renderer,
		cash:     settlement.NewCashClassifier(cashLabel),
		log:      log.Component("shift"),
		now:      ports.SystemClock,
	}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *UseCase) WithClock(c ports.Clock) *UseCase {
	uc.now = c
	return uc
}

// OpenInput apertura de turno.
type OpenInput struct {
	UnitID       string
	OpenedBy     string
	OpeningFloat decimal.Decimal
}

// CloseInput cierre con el conteo ciego del operador.
type CloseInput struct {
	ShiftID      string
	DeclaredCash decimal.Decimal
	ClosedBy     string
}

// OpenShift abre un turno. Devuelve domain.ErrConflict si la unidad ya tiene uno abierto;
// la unicidad la garantiza el almacenamiento, no una lectura previa.
func (uc *UseCase) OpenShift(ctx context.Context, in OpenInput) (*entity.Shift, error) {
	if strings.TrimSpace(in.UnitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	if strings.TrimSpace(in.OpenedBy) == "" {
		return nil, domain.Invalid("opened_by", "requerido")
	}
	if err := validateAmount("opening_float", in.OpeningFloat); err != nil {
		return nil, err
	}
	sh := &entity.Shift{
		ID:           uuid.New().String(),
		UnitID:       in.UnitID,
		OpenedBy:     in.OpenedBy,
		OpenedAt:     uc.now(),
		OpeningFloat: in.OpeningFloat,
		Status:       entity.ShiftStatusOpen,
	}
	if err := uc.shifts.Create(ctx, sh); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("shift_id", sh.ID).
		Str("unit_id", sh.UnitID).
		Str("opened_by", sh.OpenedBy).
		Str("opening_float", sh.OpeningFloat.StringFixed(2)).
		Msg("turno abierto")
	return sh, nil
}

// RequestClose marca el turno como pendiente de cierre: desde ahí no se liquidan más cuentas.
// Repetirlo no cambia la marca original.
func (uc *UseCase) RequestClose(ctx context.Context, shiftID string) (*entity.Shift, error) {
	var out *entity.Shift
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		sh, err := repos.Shifts.GetForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if !sh.IsOpen() {
			return fmt.Errorf("turno %s: %w", shiftID, domain.ErrAlreadyClosed)
		}
		if sh.CloseRequestedAt == nil {
			at := uc.now()
			sh.CloseRequestedAt = &at
			if err := repos.Shifts.Update(ctx, sh); err != nil {
				return err
			}
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloseShift cierra el turno con el arqueo: agrega el neto de los pagos de las cuentas cerradas
// en [apertura, ahora), calcula el efectivo esperado y la diferencia con lo declarado.
// Un turno cerrado nunca se recalcula (domain.ErrAlreadyClosed).
func (uc *UseCase) CloseShift(ctx context.Context, in CloseInput) (*entity.AuditReport, error) {
	if strings.TrimSpace(in.ClosedBy) == "" {
		return nil, domain.Invalid("closed_by", "requerido")
	}
	if err := validateAmount("declared_cash", in.DeclaredCash); err != nil {
		return nil, err
	}

	var closed *entity.Shift
	var res shiftdomain.Result
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		sh, err := repos.Shifts.GetForUpdate(ctx, in.ShiftID)
		if err != nil {
			return err
		}
		if !sh.IsOpen() {
			return fmt.Errorf("turno %s: %w", in.ShiftID, domain.ErrAlreadyClosed)
		}

		now := uc.now()
		tickets, err := repos.Tickets.ListClosedBetween(ctx, sh.UnitID, sh.OpenedAt, now)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(tickets))
		for _, t := range tickets {
			ids = append(ids, t.ID)
		}
		tenders, err := repos.Tenders.ListByTickets(ctx, ids)
		if err != nil {
			return err
		}

		res = shiftdomain.Reconcile(shiftdomain.Input{
			OpeningFloat: sh.OpeningFloat,
			DeclaredCash: in.DeclaredCash,
			Tickets:      tickets,
			Tenders:      tenders,
			IsCash:       uc.cash.IsCash,
		})

		sh.Status = entity.ShiftStatusClosed
		sh.ClosedBy = in.ClosedBy
		sh.ClosedAt = &now
		sh.DeclaredCash = decimalPtr(in.DeclaredCash)
		sh.ExpectedCash = decimalPtr(res.ExpectedCash)
		sh.CashVariance = decimalPtr(res.CashVariance)
		sh.NetRevenue = decimalPtr(res.NetRevenue)
		sh.TenderBreakdown = res.BreakdownMap()
		sh.SettledTicketIDs = res.SettledTicketIDs
		sh.UntenderedTicketIDs = res.UntenderedTicketIDs
		if err := repos.Shifts.Update(ctx, sh); err != nil {
			return err
		}
		closed = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.UntenderedTicketIDs) > 0 {
		uc.log.Warn().
			Str("shift_id", closed.ID).
			Strs("ticket_ids", res.UntenderedTicketIDs).
			Msg("cuentas cerradas sin pagos registrados: se sumó su total al ingreso neto")
	}
	uc.log.Info().
		Str("shift_id", closed.ID).
		Str("unit_id", closed.UnitID).
		Str("net_revenue", res.NetRevenue.StringFixed(2)).
		Str("expected_cash", res.ExpectedCash.StringFixed(2)).
		Str("declared_cash", in.DeclaredCash.StringFixed(2)).
		Str("variance", res.CashVariance.StringFixed(2)).
		Int("tickets", len(res.SettledTicketIDs)).
		Msg("turno cerrado")
	return uc.report(closed), nil
}

// CurrentShift turno abierto de la unidad (domain.ErrNotFound si no hay).
func (uc *UseCase) CurrentShift(ctx context.Context, unitID string) (*entity.Shift, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	return uc.shifts.GetOpenByUnit(ctx, unitID)
}

// GetShift turno por id.
func (uc *UseCase) GetShift(ctx context.Context, id string) (*entity.Shift, error) {
	return uc.shifts.GetByID(ctx, id)
}

// ListShifts turnos de la unidad, el más reciente primero.
func (uc *UseCase) ListShifts(ctx context.Context, unitID string, limit, offset int) ([]*entity.Shift, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.shifts.ListByUnit(ctx, unitID, limit, offset)
}

// GetReport reconstruye el Z-report a partir de las cifras persistidas del turno cerrado.
func (uc *UseCase) GetReport(ctx context.Context, shiftID string) (*entity.AuditReport, error) {
	sh, err := uc.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if sh.IsOpen() {
		return nil, fmt.Errorf("turno %s aún abierto: %w", shiftID, domain.ErrConflict)
	}
	return uc.report(sh), nil
}

// RenderReportPDF versión imprimible del Z-report.
func (uc *UseCase) RenderReportPDF(ctx context.Context, shiftID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("generador de PDF no configurado: %w", domain.ErrPersistence)
	}
	rep, err := uc.GetReport(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(rep)
}

func (uc *UseCase) report(sh *entity.Shift) *entity.AuditReport {
	rep := &entity.AuditReport{
		ShiftID:             sh.ID,
		UnitID:              sh.UnitID,
		OpenedBy:            sh.OpenedBy,
		ClosedBy:            sh.ClosedBy,
		OpenedAt:            sh.OpenedAt,
		OpeningFloat:        sh.OpeningFloat,
		ExpectedCash:        deref(sh.ExpectedCash),
		DeclaredCash:        deref(sh.DeclaredCash),
		CashVariance:        deref(sh.CashVariance),
		NetRevenue:          deref(sh.NetRevenue),
		SettledTicketIDs:    append([]string(nil), sh.SettledTicketIDs...),
		UntenderedTicketIDs: append([]string(nil), sh.UntenderedTicketIDs...),
	}
	if sh.ClosedAt != nil {
		rep.ClosedAt = *sh.ClosedAt
	}
	methods := make([]string, 0, len(sh.TenderBreakdown))
	for m := range sh.TenderBreakdown {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		rep.TenderBreakdown = append(rep.TenderBreakdown, entity.TenderTotal{
			Method: m,
			Amount: sh.TenderBreakdown[m],
			IsCash: uc.cash.IsCash(m),
		})
	}
	// el efectivo del turno es el que se usó al cerrar, aunque la etiqueta cambie después
	rep.CashTotal = rep.ExpectedCash.Sub(rep.OpeningFloat)
	rep.Digest = shiftdomain.Digest(rep)
	return rep
}

func validateAmount(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.Invalid(field, "no puede ser negativo")
	}
	if !v.Equal(v.Round(2)) {
		return domain.Invalid(field, "máximo dos decimales")
	}
	return nil
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
