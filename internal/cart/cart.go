// Package cart holds the tests and packages picked for booking.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zet-health/zet_booking/internal/storage"
)

var (
	ErrMissingID     = errors.New("cart item id is required")
	ErrNegativePrice = errors.New("cart item price must not be negative")
)

// Item is a bookable test or package. Items are keyed by ID; adding an ID
// that is already in the cart bumps its quantity.
type Item struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Price    float64           `json:"price"`
	Image    string            `json:"image,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Quantity int               `json:"quantity"`
}

// Store owns the cart storage key.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger

	mu    sync.RWMutex
	items map[string]Item
	order []string
}

// NewStore creates an empty cart. Call Load to hydrate it.
func NewStore(st storage.Storage, logger *slog.Logger) *Store {
	return &Store{storage: st, logger: logger, items: make(map[string]Item)}
}

// Load replaces the in-memory cart with the persisted one. A missing or
// corrupt value yields an empty cart.
func (s *Store) Load(ctx context.Context) error {
	var persisted []Item
	err := storage.GetJSON(ctx, s.storage, storage.KeyCart, &persisted)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		persisted = nil
	case err != nil:
		s.logger.Warn("failed to load cart from storage", slog.Any("error", err))
		persisted = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]Item, len(persisted))
	s.order = s.order[:0]
	for _, it := range persisted {
		if it.ID == "" {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if existing, ok := s.items[it.ID]; ok {
			existing.Quantity += it.Quantity
			s.items[it.ID] = existing
			continue
		}
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return nil
}

// Add puts item in the cart, or bumps the quantity of an item with the same ID.
// The cart is unchanged when persisting fails.
func (s *Store) Add(ctx context.Context, item Item) (Item, error) {
	if item.ID == "" {
		return Item{}, ErrMissingID
	}
	if item.Price < 0 {
		return Item{}, ErrNegativePrice
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items, order := s.clone()
	if existing, ok := items[item.ID]; ok {
		existing.Quantity += item.Quantity
		item = existing
	} else {
		order = append(order, item.ID)
	}
	items[item.ID] = item
	if err := s.commit(ctx, items, order); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove drops the item with id entirely. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	items, order := s.clone()
	delete(items, id)
	for i, oid := range order {
		if oid == id {
			order = append(order[:i], order[i+1:]...)
			break
		}
	}
	return s.commit(ctx, items, order)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, make(map[string]Item), nil)
}

// Items returns the cart in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Count is the number of units across all items.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of price times quantity.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (s *Store) snapshot() []Item {
	return snapshot(s.items, s.order)
}

func snapshot(items map[string]Item, order []string) []Item {
	out := make([]Item, 0, len(order))
	for _, id := range order {
		it := items[id]
		if it.Metadata != nil {
			md := make(map[string]string, len(it.Metadata))
			for k, v := range it.Metadata {
				md[k] = v
			}
			it.Metadata = md
		}
		out = append(out, it)
	}
	return out
}

// clone must be called with mu held.
func (s *Store) clone() (map[string]Item, []string) {
	items := make(map[string]Item, len(s.items)+1)
	for id, it := range s.items {
		items[id] = it
	}
	order := make([]string, len(s.order), len(s.order)+1)
	copy(order, s.order)
	return items, order
}

// commit persists the next state and only then swaps it in. mu must be held.
func (s *Store) commit(ctx context.Context, items map[string]Item, order []string) error {
	if err := storage.SetJSON(ctx, s.storage, storage.KeyCart, snapshot(items, order)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = items
	s.order = order
	return nil
}
