// Package memory implementa los puertos de persistencia en memoria de proceso.
// Sirve para el modo demo (STORE_DRIVER=memory) y para los tests de casos de uso.
// Cada transacción toma el candado global, trabaja sobre una copia del estado y la
// publica solo si fn termina sin error, de modo que un fallo no deja efectos parciales.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type stockKey struct {
	unitID    string
	productID string
}

type storedItem struct {
	item entity.LineItem
	seq  int64
}

type state struct {
	seq       int64
	shifts    map[string]entity.Shift
	tickets   map[string]entity.Ticket // sin Items
	items     map[string]storedItem
	tenders   []entity.Tender
	balances  map[stockKey]entity.StockBalance
	movements []entity.StockMovement
	products  map[string]entity.Product
	prices    map[stockKey]decimal.Decimal // precio propio de la unidad
	methods   []entity.PaymentMethod
}

func newState() *state {
	return &state{
		shifts:   make(map[string]entity.Shift),
		tickets:  make(map[string]entity.Ticket),
		items:    make(map[string]storedItem),
		balances: make(map[stockKey]entity.StockBalance),
		products: make(map[string]entity.Product),
		prices:   make(map[stockKey]decimal.Decimal),
	}
}

func (st *state) clone() *state {
	c := &state{
		seq:       st.seq,
		shifts:    make(map[string]entity.Shift, len(st.shifts)),
		tickets:   make(map[string]entity.Ticket, len(st.tickets)),
		items:     make(map[string]storedItem, len(st.items)),
		tenders:   append([]entity.Tender(nil), st.tenders...),
		balances:  make(map[stockKey]entity.StockBalance, len(st.balances)),
		movements: append([]entity.StockMovement(nil), st.movements...),
		products:  st.products, // el catálogo es de solo lectura para el motor
		prices:    st.prices,
		methods:   st.methods,
	}
	for k, v := range st.shifts {
		c.shifts[k] = copyShift(v)
	}
	for k, v := range st.tickets {
		c.tickets[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	return c
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store almacén en memoria. También implementa ports.TxRunner y repository.CatalogSnapshot.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un almacén vacío con las formas de pago por defecto.
func New() *Store {
	st := newState()
	st.methods = DefaultPaymentMethods()
	return &Store{st: st}
}

// DefaultPaymentMethods formas de pago con las que nace una instalación.
func DefaultPaymentMethods() []entity.PaymentMethod {
	return []entity.PaymentMethod{
		{ID: "dinheiro", Name: "Dinheiro", Active: true},
		{ID: "pix", Name: "Pix", Active: true},
		{ID: "credito", Name: "Cartão de Crédito", Active: true},
		{ID: "debito", Name: "Cartão de Débito", Active: true},
	}
}

// PutProduct registra o reemplaza un producto del catálogo (carga de datos / tests).
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make(map[string]entity.Product, len(s.st.products)+1)
	for k, v := range s.st.products {
		products[k] = v
	}
	products[p.ProductID()] = p
	s.st.products = products
}

// PutUnitPrice fija el precio propio de un producto en una unidad; las demás siguen con el precio base.
func (s *Store) PutUnitPrice(unitID, productID string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices := make(map[stockKey]decimal.Decimal, len(s.st.prices)+1)
	for k, v := range s.st.prices {
		prices[k] = v
	}
	prices[stockKey{unitID, productID}] = price
	s.st.prices = prices
}

// SetPaymentMethods reemplaza las formas de pago configuradas.
func (s *Store) SetPaymentMethods(methods []entity.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.methods = append([]entity.PaymentMethod(nil), methods...)
}

// Run ejecuta fn en exclusión mutua sobre una copia del estado; la copia se publica solo si fn no falla.
// fn no debe usar los repositorios sin transacción del mismo Store (el candado ya está tomado).
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	h := handle{s: s, tx: work}
	repos := ports.TxRepos{
		Shifts:    &ShiftRepository{h},
		Tickets:   &TicketRepository{h},
		Tenders:   &TenderRepository{h},
		Stock:     &StockRepository{h},
		Movements: &MovementRepository{h},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = work
	return nil
}

// handle resuelve sobre qué estado opera un repositorio: el de la transacción en curso
// o el publicado, tomando el candado por operación.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) with(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.st)
}

// Repositorios fuera de transacción.

func (s *Store) Shifts() *ShiftRepository { return &ShiftRepository{handle{s: s}} }

func (s *Store) Tickets() *TicketRepository { return &TicketRepository{handle{s: s}} }

func (s *Store) Tenders() *TenderRepository { return &TenderRepository{handle{s: s}} }

func (s *Store) Stock() *StockRepository { return &StockRepository{handle{s: s}} }

func (s *Store) Movements() *MovementRepository { return &MovementRepository{handle{s: s}} }

func (s *Store) PaymentMethods() *PaymentMethodRepository {
	return &PaymentMethodRepository{handle{s: s}}
}

var _ repository.CatalogSnapshot = (*Store)(nil)

func copyShift(sh entity.Shift) entity.Shift {
	if sh.TenderBreakdown != nil {
		m := make(map[string]decimal.Decimal, len(sh.TenderBreakdown))
		for k, v := range sh.TenderBreakdown {
			m[k] = v
		}
		sh.TenderBreakdown = m
	}
	sh.SettledTicketIDs = append([]string(nil), sh.SettledTicketIDs...)
	sh.UntenderedTicketIDs = append([]string(nil), sh.UntenderedTicketIDs...)
	return sh
}
