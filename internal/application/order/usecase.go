// Package order lleva las cuentas abiertas (mesa o balcón) y sus ítems hasta la liquidación.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// Config reglas de tasa de servicio.
type Config struct {
	TableServiceChargePercent int // aplicado al abrir una cuenta de mesa
	MaxServiceChargePercent   int
}

// UseCase casos de uso de cuentas.
type UseCase struct {
	txRunner ports.TxRunner
	tickets  repository.TicketRepository
	catalog  repository.CatalogSnapshot
	cfg      Config
	log      *logger.Logger
	now      ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	tickets repository.TicketRepository,
	catalog repository.CatalogSnapshot,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		tickets:  tickets,
		catalog:  catalog,
		cfg:      cfg,
		log:      log.Component("order"),
		now:      ports.SystemClock,
	}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *UseCase) WithClock(c ports.Clock) *UseCase {
	uc.now = c
	return uc
}

// OpenInput apertura de cuenta.
type OpenInput struct {
	UnitID   string
	Kind     string
	TableRef string
	OpenedBy string
}

// AddItemInput ítem a agregar.
type AddItemInput struct {
	TicketID  string
	ProductID string
	Quantity  decimal.Decimal
	EnteredBy string
}

// OpenTicket abre una cuenta. Para mesas exige la referencia de mesa y devuelve domain.ErrConflict
// si la mesa ya tiene una cuenta abierta.
func (uc *UseCase) OpenTicket(ctx context.Context, in OpenInput) (*entity.Ticket, error) {
	if strings.TrimSpace(in.UnitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	if strings.TrimSpace(in.OpenedBy) == "" {
		return nil, domain.Invalid("opened_by", "requerido")
	}
	t := &entity.Ticket{
		ID:                   uuid.New().String(),
		UnitID:               in.UnitID,
		Kind:                 in.Kind,
		Status:               entity.TicketStatusOpen,
		OpenedBy:             in.OpenedBy,
		OpenedAt:             uc.now(),
		ServiceChargePercent: decimal.Zero,
		Items:                []entity.LineItem{},
	}
	switch in.Kind {
	case entity.TicketKindTable:
		ref := strings.TrimSpace(in.TableRef)
		if ref == "" {
			return nil, domain.Invalid("table_ref", "requerido para cuentas de mesa")
		}
		t.TableRef = ref
		t.ServiceChargePercent = decimal.NewFromInt(int64(uc.cfg.TableServiceChargePercent))
	case entity.TicketKindCounter:
		if strings.TrimSpace(in.TableRef) != "" {
			return nil, domain.Invalid("table_ref", "solo las cuentas de mesa llevan mesa")
		}
	default:
		return nil, domain.Invalid("kind", fmt.Sprintf("tipo de cuenta desconocido %q", in.Kind))
	}
	t.Recalculate()
	if err := uc.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddLineItem agrega un producto a la cuenta con el precio vigente en el catálogo en este momento.
// Los productos por unidad exigen cantidades enteras y se acumulan en la línea existente;
// los productos por peso agregan siempre una línea nueva.
func (uc *UseCase) AddLineItem(ctx context.Context, in AddItemInput) (*entity.LineItem, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if strings.TrimSpace(in.EnteredBy) == "" {
		return nil, domain.Invalid("entered_by", "requerido")
	}
	snapshot, err := uc.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsOpen() {
		return nil, fmt.Errorf("cuenta %s: %w", snapshot.ID, domain.ErrAlreadyClosed)
	}
	product, err := uc.catalog.GetProduct(ctx, snapshot.UnitID, in.ProductID)
	if err != nil {
		return nil, err
	}
	mode := product.Pricing()
	if mode == entity.PricingModeUnit && !in.Quantity.IsInteger() {
		return nil, domain.Invalid("quantity", "los productos por unidad requieren cantidades enteras")
	}
	if mode == entity.PricingModeWeight && !in.Quantity.Equal(in.Quantity.Round(3)) {
		return nil, domain.Invalid("quantity", "peso con máximo tres decimales")
	}

	var out *entity.LineItem
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		t, err := repos.Tickets.GetForUpdate(ctx, in.TicketID)
		if err != nil {
			return err
		}
		if !t.IsOpen() {
			return fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrAlreadyClosed)
		}

		if mode == entity.PricingModeUnit {
			for i := range t.Items {
				it := &t.Items[i]
				if it.ProductID != product.ProductID() {
					continue
				}
				it.Quantity = it.Quantity.Add(in.Quantity)
				it.LineTotal = entity.LineTotalFor(it.Quantity, it.UnitPrice)
				if err := repos.Tickets.UpdateItem(ctx, it); err != nil {
					return err
				}
				c := *it
				out = &c
				break
			}
		}
		if out == nil {
			item := entity.LineItem{
				ID:          uuid.New().String(),
				TicketID:    t.ID,
				ProductID:   product.ProductID(),
				PricingMode: mode,
				Quantity:    in.Quantity,
				UnitPrice:   product.Price(),
				LineTotal:   entity.LineTotalFor(in.Quantity, product.Price()),
				EnteredBy:   in.EnteredBy,
				EnteredAt:   uc.now(),
			}
			if err := repos.Tickets.AddItem(ctx, &item); err != nil {
				return err
			}
			t.Items = append(t.Items, item)
			out = &item
		}
		t.Recalculate()
		return repos.Tickets.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveLineItem quita una línea y recalcula; si era la última, la cuenta pasa a cancelada.
func (uc *UseCase) RemoveLineItem(ctx context.Context, lineItemID, actor string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		item, err := repos.Tickets.GetItem(ctx, lineItemID)
		if err != nil {
			return err
		}
		t, err := repos.Tickets.GetForUpdate(ctx, item.TicketID)
		if err != nil {
			return err
		}
		if !t.IsOpen() {
			return fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrAlreadyClosed)
		}
		if err := repos.Tickets.DeleteItem(ctx, lineItemID); err != nil {
			return err
		}
		if i := t.ItemIndex(lineItemID); i >= 0 {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
		}
		t.Recalculate()
		if len(t.Items) == 0 {
			now := uc.now()
			t.Status = entity.TicketStatusCancelled
			t.ClosedAt = &now
			t.ClosedBy = actor
		}
		if err := repos.Tickets.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Status == entity.TicketStatusCancelled {
		uc.log.Info().Str("ticket_id", out.ID).Str("actor", actor).Msg("cuenta cancelada al quitar su último ítem")
	}
	return out, nil
}

// RequestSettlement marca la cuenta como "pidió la cuenta". Solo es un aviso para la caja:
// no bloquea nuevas ediciones.
func (uc *UseCase) RequestSettlement(ctx context.Context, ticketID string) (*entity.Ticket, error) {
	return uc.mutateOpen(ctx, ticketID, func(t *entity.Ticket) error {
		if !t.RequestedSettlement {
			now := uc.now()
			t.RequestedSettlement = true
			t.SettlementRequestedAt = &now
		}
		return nil
	})
}

// SetServiceCharge cambia el porcentaje de servicio de una cuenta de mesa abierta.
func (uc *UseCase) SetServiceCharge(ctx context.Context, ticketID string, percent decimal.Decimal) (*entity.Ticket, error) {
	limit := decimal.NewFromInt(int64(uc.cfg.MaxServiceChargePercent))
	if percent.IsNegative() || percent.GreaterThan(limit) {
		return nil, domain.Invalid("percent", fmt.Sprintf("debe estar entre 0 y %s", limit))
	}
	if !percent.Equal(percent.Round(2)) {
		return nil, domain.Invalid("percent", "máximo dos decimales")
	}
	return uc.mutateOpen(ctx, ticketID, func(t *entity.Ticket) error {
		if t.Kind != entity.TicketKindTable {
			return domain.Invalid("kind", "la tasa de servicio solo aplica a cuentas de mesa")
		}
		t.ServiceChargePercent = percent
		t.Recalculate()
		return nil
	})
}

// GetLineItem ítem por id (domain.ErrNotFound si no existe).
func (uc *UseCase) GetLineItem(ctx context.Context, id string) (*entity.LineItem, error) {
	return uc.tickets.GetItem(ctx, id)
}

// GetTicket cuenta con sus ítems.
func (uc *UseCase) GetTicket(ctx context.Context, id string) (*entity.Ticket, error) {
	return uc.tickets.GetByID(ctx, id)
}

// ListOpenTickets cuentas abiertas de la unidad, la más antigua primero.
func (uc *UseCase) ListOpenTickets(ctx context.Context, unitID string) ([]*entity.Ticket, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	return uc.tickets.ListOpenByUnit(ctx, unitID)
}

func (uc *UseCase) mutateOpen(ctx context.Context, ticketID string, fn func(t *entity.Ticket) error) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		t, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if !t.IsOpen() {
			return fmt.Errorf("cuenta %s: %w", t.ID, domain.ErrAlreadyClosed)
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := repos.Tickets.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
