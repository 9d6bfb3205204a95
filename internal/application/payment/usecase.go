// Package payment liquida cuentas: calcula saldo y cambio de los pagos propuestos y, al finalizar,
// registra pagos, descuenta inventario y cierra la cuenta en una única transacción.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/internal/domain/settlement"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// UseCase motor de conciliación de pagos.
type UseCase struct {
	txRunner  ports.TxRunner
	tickets   repository.TicketRepository
	methods   repository.PaymentMethodRepository
	catalog   repository.CatalogSnapshot
	inventory InventoryUseCase
	cash      *settlement.CashClassifier
	log       *logger.Logger
	now       ports.Clock
}

// NewUseCase construye el caso de uso. cashLabel identifica las formas de pago en efectivo.
func NewUseCase(
	txRunner ports.TxRunner,
	tickets repository.TicketRepository,
	methods repository.PaymentMethodRepository,
	catalog repository.CatalogSnapshot,
	inventory InventoryUseCase,
	cashLabel string,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		tickets:   tickets,
		methods:   methods,
		catalog:   catalog,
		inventory: inventory,
		cash:      settlement.NewCashClassifier(cashLabel),
		log:       log.Component("payment"),
		now:       ports.SystemClock,
	}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *UseCase) WithClock(c ports.Clock) *UseCase {
	uc.now = c
	return uc
}

// TenderInput pago propuesto por la caja, en orden de entrada.
type TenderInput struct {
	MethodID string
	Amount   decimal.Decimal
}

// FinalizeInput liquidación de una cuenta.
type FinalizeInput struct {
	TicketID    string
	Tenders     []TenderInput
	CollectedBy string
}

// Settlement resultado de una liquidación.
type Settlement struct {
	Ticket    *entity.Ticket
	Tenders   []*entity.Tender
	Movements []*entity.StockMovement
	State     settlement.State
}

// Quote calcula saldo, cambio y estado para los pagos propuestos, sin escribir nada.
func (uc *UseCase) Quote(ctx context.Context, ticketID string, tenders []TenderInput) (settlement.State, error) {
	t, err := uc.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return settlement.State{}, err
	}
	if !t.IsOpen() {
		return settlement.State{}, fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrAlreadyClosed)
	}
	proposed := make([]settlement.Proposed, 0, len(tenders))
	if len(tenders) > 0 {
		proposed, err = uc.resolve(ctx, tenders)
		if err != nil {
			return settlement.State{}, err
		}
	}
	return settlement.Evaluate(settlement.Due(t.Items, t.ServiceChargePercent), proposed), nil
}

// Finalize liquida la cuenta. Precondiciones: turno abierto y sin pedido de cierre en la unidad
// (domain.ErrShiftClosed) y pagos que cubran el total (*domain.InsufficientFundsError).
// El cambio sale solo de pagos en efectivo, empezando por el primero. Pagos, descuento de stock
// y cierre de la cuenta se confirman juntos; la cuenta se bloquea y se re-verifica abierta dentro
// de la transacción, por lo que una segunda llamada falla con domain.ErrAlreadyClosed sin escribir.
func (uc *UseCase) Finalize(ctx context.Context, in FinalizeInput) (*Settlement, error) {
	if strings.TrimSpace(in.CollectedBy) == "" {
		return nil, domain.Invalid("collected_by", "requerido")
	}
	proposed, err := uc.resolve(ctx, in.Tenders)
	if err != nil {
		return nil, err
	}

	// Lectura previa fuera de la transacción: falla rápido y trae el catálogo sin mantener bloqueos.
	snapshot, err := uc.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsOpen() {
		return nil, fmt.Errorf("cuenta %s: %w", snapshot.ID, domain.ErrAlreadyClosed)
	}
	products, err := uc.products(ctx, snapshot.UnitID, snapshot.Items)
	if err != nil {
		return nil, err
	}

	res := &Settlement{}
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		t, err := repos.Tickets.GetForUpdate(ctx, in.TicketID)
		if err != nil {
			return err
		}
		if !t.IsOpen() {
			return fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrAlreadyClosed)
		}
		if len(t.Items) == 0 {
			return domain.Invalid("ticket_id", "la cuenta no tiene ítems")
		}
		for _, it := range t.Items {
			if _, ok := products[it.ProductID]; !ok {
				return fmt.Errorf("la cuenta %s cambió durante el cobro: %w", t.ID, domain.ErrConflict)
			}
		}

		// bloqueo compartido: un cierre concurrente espera a este cobro o lo ve ya cerrado
		sh, err := repos.Shifts.GetOpenByUnitForShare(ctx, t.UnitID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unidad %s: %w", t.UnitID, domain.ErrShiftClosed)
		}
		if err != nil {
			return err
		}
		if !sh.AcceptsSettlement() {
			return fmt.Errorf("turno %s en cierre: %w", sh.ID, domain.ErrShiftClosed)
		}

		state := settlement.Evaluate(settlement.Due(t.Items, t.ServiceChargePercent), proposed)
		if !state.CanFinalize() {
			return &domain.InsufficientFundsError{Due: state.Due, Tendered: state.Tendered}
		}
		change, err := settlement.AllocateChange(proposed, state.Change, uc.cash)
		if err != nil {
			return err
		}

		now := uc.now()
		tenders := make([]*entity.Tender, 0, len(proposed))
		for i, p := range proposed {
			tenders = append(tenders, &entity.Tender{
				ID:          uuid.New().String(),
				TicketID:    t.ID,
				MethodID:    p.MethodID,
				MethodName:  p.MethodName,
				Amount:      p.Amount,
				ChangeGiven: change[i],
				CollectedBy: in.CollectedBy,
				CollectedAt: now,
			})
		}
		if err := repos.Tenders.CreateBatch(ctx, tenders); err != nil {
			return err
		}

		movements, err := uc.inventory.DecrementForSale(ctx, repos, t.UnitID, t.Items, products, in.CollectedBy, t.ID)
		if err != nil {
			return err
		}

		t.Recalculate()
		t.Total = state.Due
		t.Status = entity.TicketStatusClosed
		t.ClosedAt = &now
		t.ClosedBy = in.CollectedBy
		if err := repos.Tickets.Update(ctx, t); err != nil {
			return err
		}

		res.Ticket = t
		res.Tenders = tenders
		res.Movements = movements
		res.State = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("ticket_id", res.Ticket.ID).
		Str("unit_id", res.Ticket.UnitID).
		Str("due", res.State.Due.StringFixed(2)).
		Str("tendered", res.State.Tendered.StringFixed(2)).
		Str("change", res.State.Change.StringFixed(2)).
		Int("movements", len(res.Movements)).
		Msg("cuenta liquidada")
	return res, nil
}

// ListPaymentMethods formas de pago activas.
func (uc *UseCase) ListPaymentMethods(ctx context.Context) ([]*entity.PaymentMethod, error) {
	return uc.methods.List(ctx, true)
}

// resolve valida los pagos y les asigna el nombre de su forma de pago.
func (uc *UseCase) resolve(ctx context.Context, tenders []TenderInput) ([]settlement.Proposed, error) {
	proposed := make([]settlement.Proposed, 0, len(tenders))
	for _, t := range tenders {
		proposed = append(proposed, settlement.Proposed{MethodID: t.MethodID, Amount: t.Amount})
	}
	if err := settlement.ValidateTenders(proposed); err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for i := range proposed {
		id := proposed[i].MethodID
		name, ok := names[id]
		if !ok {
			m, err := uc.methods.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if !m.Active {
				return nil, domain.Invalid(fmt.Sprintf("tenders[%d].method_id", i), "forma de pago inactiva")
			}
			name = m.Name
			names[id] = name
		}
		proposed[i].MethodName = name
	}
	return proposed, nil
}

func (uc *UseCase) products(ctx context.Context, unitID string, lines []entity.LineItem) (map[string]entity.Product, error) {
	out := make(map[string]entity.Product, len(lines))
	for _, l := range lines {
		if _, ok := out[l.ProductID]; ok {
			continue
		}
		p, err := uc.catalog.GetProduct(ctx, unitID, l.ProductID)
		if err != nil {
			return nil, err
		}
		out[l.ProductID] = p
	}
	return out, nil
}
