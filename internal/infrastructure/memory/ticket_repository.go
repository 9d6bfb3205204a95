package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepository)(nil)

// TicketRepository cuentas e ítems en memoria.
type TicketRepository struct{ h handle }

func (r *TicketRepository) Create(_ context.Context, ticket *entity.Ticket) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.tickets[ticket.ID]; ok {
			return fmt.Errorf("cuenta %s: %w", ticket.ID, domain.ErrConflict)
		}
		if ticket.Kind == entity.TicketKindTable {
			for _, t := range st.tickets {
				if t.UnitID == ticket.UnitID && t.Kind == entity.TicketKindTable &&
					t.Status == entity.TicketStatusOpen && t.TableRef == ticket.TableRef {
					return fmt.Errorf("mesa %s ya tiene una cuenta abierta: %w", ticket.TableRef, domain.ErrConflict)
				}
			}
		}
		head := *ticket
		head.Items = nil
		st.tickets[ticket.ID] = head
		for _, it := range ticket.Items {
			st.items[it.ID] = storedItem{item: it, seq: st.next()}
		}
		return nil
	})
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.h.with(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("cuenta %s: %w", id, domain.ErrNotFound)
		}
		out = st.withItems(t)
		return nil
	})
	return out, err
}

func (r *TicketRepository) GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *TicketRepository) Update(_ context.Context, ticket *entity.Ticket) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.tickets[ticket.ID]; !ok {
			return fmt.Errorf("cuenta %s: %w", ticket.ID, domain.ErrNotFound)
		}
		head := *ticket
		head.Items = nil
		st.tickets[ticket.ID] = head
		return nil
	})
}

func (r *TicketRepository) ListOpenByUnit(_ context.Context, unitID string) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	err := r.h.with(func(st *state) error {
		for _, t := range st.tickets {
			if t.UnitID == unitID && t.Status == entity.TicketStatusOpen {
				out = append(out, st.withItems(t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out, err
}

func (r *TicketRepository) ListClosedBetween(_ context.Context, unitID string, from, to time.Time) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	err := r.h.with(func(st *state) error {
		for _, t := range st.tickets {
			if t.UnitID != unitID || t.Status != entity.TicketStatusClosed || t.ClosedAt == nil {
				continue
			}
			if t.ClosedAt.Before(from) || !t.ClosedAt.Before(to) {
				continue
			}
			out = append(out, st.withItems(t))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.Before(*out[j].ClosedAt) })
	return out, err
}

func (r *TicketRepository) AddItem(_ context.Context, item *entity.LineItem) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.tickets[item.TicketID]; !ok {
			return fmt.Errorf("cuenta %s: %w", item.TicketID, domain.ErrNotFound)
		}
		if _, ok := st.items[item.ID]; ok {
			return fmt.Errorf("ítem %s: %w", item.ID, domain.ErrConflict)
		}
		st.items[item.ID] = storedItem{item: *item, seq: st.next()}
		return nil
	})
}

func (r *TicketRepository) UpdateItem(_ context.Context, item *entity.LineItem) error {
	return r.h.with(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return fmt.Errorf("ítem %s: %w", item.ID, domain.ErrNotFound)
		}
		cur.item = *item
		st.items[item.ID] = cur
		return nil
	})
}

func (r *TicketRepository) DeleteItem(_ context.Context, itemID string) error {
	return r.h.with(func(st *state) error {
		if _, ok := st.items[itemID]; !ok {
			return fmt.Errorf("ítem %s: %w", itemID, domain.ErrNotFound)
		}
		delete(st.items, itemID)
		return nil
	})
}

func (r *TicketRepository) GetItem(_ context.Context, itemID string) (*entity.LineItem, error) {
	var out *entity.LineItem
	err := r.h.with(func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return fmt.Errorf("ítem %s: %w", itemID, domain.ErrNotFound)
		}
		c := it.item
		out = &c
		return nil
	})
	return out, err
}

func (st *state) withItems(t entity.Ticket) *entity.Ticket {
	var stored []storedItem
	for _, it := range st.items {
		if it.item.TicketID == t.ID {
			stored = append(stored, it)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })
	t.Items = make([]entity.LineItem, 0, len(stored))
	for _, it := range stored {
		t.Items = append(t.Items, it.item)
	}
	return &t
}
