// Package memory implementa los repositorios sobre mapas en memoria.
// Se usa en tests y en modo demo; las transacciones serializan todo el store
// y restauran una copia si la función falla.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

type state struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	users      map[string]*entity.User
	orders     map[string]*entity.Order
	activities []*entity.Activity
}

func newState() *state {
	return &state{
		products:   map[string]*entity.Product{},
		categories: map[string]*entity.Category{},
		suppliers:  map[string]*entity.Supplier{},
		users:      map[string]*entity.User{},
		orders:     map[string]*entity.Order{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range s.suppliers {
		cp := *v
		c.suppliers[k] = &cp
	}
	for k, v := range s.users {
		cp := *v
		c.users[k] = &cp
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	c.activities = make([]*entity.Activity, len(s.activities))
	for i, a := range s.activities {
		cp := *a
		c.activities[i] = &cp
	}
	return c
}

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOn hace que la operación op ("activity.create", "order.create", "product.decrement",
// "tx.commit"...) devuelva err hasta que se llame ClearFailures.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures elimina los fallos inyectados.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

func (s *Store) fault(op string) error {
	if err, ok := s.failures[op]; ok {
		return err
	}
	return nil
}

// view ejecuta fn con el estado. Dentro de una transacción el lock ya está tomado.
func (s *Store) view(inTx bool, op string, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.fault(op); err != nil {
		return err
	}
	return fn(s.st)
}

// tx serializa la función completa y restaura la copia previa si algo falla.
func (s *Store) tx(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.fault("tx.begin"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	snapshot := s.st.clone()
	if err := fn(); err != nil {
		s.st = snapshot
		return err
	}
	if err := s.fault("tx.commit"); err != nil {
		s.st = snapshot
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		cp.DiscountPrice = &d
	}
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	if o.RefundedAt != nil {
		t := *o.RefundedAt
		cp.RefundedAt = &t
	}
	return &cp
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
