package memory

import (
	"context"
	"fmt"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
)

// GetProduct implementa repository.CatalogSnapshot.
func (s *Store) GetProduct(_ context.Context, unitID, id string) (entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if price, ok := s.st.prices[stockKey{unitID, id}]; ok {
		return entity.WithUnitPrice(p, price), nil
	}
	return p, nil
}
