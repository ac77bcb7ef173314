package cart

import (
	"strings"
	"sync"
)

type cartGauge interface {
	SetCartItems(session string, count int)
	DropCartSession(session string)
}

// Service hands out one Store per session and tracks their lifecycle.
// Stores are created lazily and live in memory only; nothing survives a
// restart, matching the ephemeral cart model.
type Service interface {
	Store(sessionID string) *Store
	Drop(sessionID string)
	Sessions() int
}

type service struct {
	mu     sync.Mutex
	stores map[string]*Store
	gauge  cartGauge
}

// NewService builds the session-scoped cart registry. The gauge is optional
// and receives live item counts through the store's observer hook.
func NewService(gauge cartGauge) Service {
	return &service{
		stores: make(map[string]*Store),
		gauge:  gauge,
	}
}

// Store returns the cart for the session, creating an empty one on first use.
func (s *service) Store(sessionID string) *Store {
	sessionID = strings.TrimSpace(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[sessionID]; ok {
		return store
	}

	store := NewStore()
	if s.gauge != nil {
		gauge := s.gauge
		session := sessionID
		store.Subscribe(func(totalItems int, _ int64) {
			gauge.SetCartItems(session, totalItems)
		})
	}
	s.stores[sessionID] = store
	return store
}

// Drop discards the session's cart and its metric series.
func (s *service) Drop(sessionID string) {
	sessionID = strings.TrimSpace(sessionID)

	s.mu.Lock()
	_, ok := s.stores[sessionID]
	delete(s.stores, sessionID)
	s.mu.Unlock()

	if ok && s.gauge != nil {
		s.gauge.DropCartSession(sessionID)
	}
}

// Sessions reports how many carts are currently held.
func (s *service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
