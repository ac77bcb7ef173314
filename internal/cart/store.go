package cart

import (
	"strings"
	"sync"
)

// Item is a single cart line. Prices are USD minor units.
type Item struct {
	ID             string
	Name           string
	Image          string
	UnitPriceCents int64
	Quantity       int
}

// Observer is invoked synchronously after every mutating call.
type Observer func(totalItems int, subtotalCents int64)

// Store is the single source of truth for one session's cart contents.
// Items keep insertion order and are keyed by ID; adding an existing ID
// merges quantities instead of appending a duplicate line.
type Store struct {
	mu        sync.Mutex
	items     []Item
	index     map[string]int
	observers []Observer
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Subscribe registers an observer notified after each mutation.
func (s *Store) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// AddItem merges qty into an existing line or appends a new one.
// Quantities below one are clamped to one.
func (s *Store) AddItem(item Item, qty int) {
	if strings.TrimSpace(item.ID) == "" {
		return
	}
	if qty < 1 {
		qty = 1
	}
	if item.UnitPriceCents < 0 {
		item.UnitPriceCents = 0
	}

	s.mu.Lock()
	if pos, ok := s.index[item.ID]; ok {
		s.items[pos].Quantity += qty
	} else {
		item.Quantity = qty
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	s.notifyLocked()
}

// UpdateQuantity sets the quantity for the given line. A non-positive
// quantity removes the line entirely; an unknown ID is a no-op.
func (s *Store) UpdateQuantity(id string, qty int) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if qty <= 0 {
		s.removeAtLocked(pos)
	} else {
		s.items[pos].Quantity = qty
	}
	s.notifyLocked()
}

// RemoveItem drops the line if present; unknown IDs are a no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.removeAtLocked(pos)
	s.notifyLocked()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[string]int)
	s.notifyLocked()
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems returns the sum of quantities over current lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItemsLocked()
}

// SubtotalCents returns the sum of price x quantity over current lines.
func (s *Store) SubtotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

func (s *Store) totalItemsLocked() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) subtotalLocked() int64 {
	var subtotal int64
	for _, item := range s.items {
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}
	return subtotal
}

func (s *Store) removeAtLocked(pos int) {
	removed := s.items[pos]
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, removed.ID)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
}

// notifyLocked releases the lock and then invokes observers synchronously,
// so an observer may read the store without deadlocking.
func (s *Store) notifyLocked() {
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	totalItems := s.totalItemsLocked()
	subtotal := s.subtotalLocked()
	s.mu.Unlock()

	for _, fn := range observers {
		fn(totalItems, subtotal)
	}
}
