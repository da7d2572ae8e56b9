// Package memory provides in-memory store implementations used by tests
// and local development runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

type TicketStore struct {
	mu      sync.RWMutex
	tickets map[string]*models.TicketAsset
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]*models.TicketAsset)}
}

func (s *TicketStore) Create(_ context.Context, ticket *models.TicketAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; ok {
		return fmt.Errorf("ticket asset %s already exists", ticket.ID)
	}
	s.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (s *TicketStore) Get(_ context.Context, id string) (*models.TicketAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%w: ticket asset %s", status.ErrNotFound, id)
	}
	return copyTicket(ticket), nil
}

func (s *TicketStore) Update(_ context.Context, ticket *models.TicketAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; !ok {
		return fmt.Errorf("%w: ticket asset %s", status.ErrNotFound, ticket.ID)
	}
	s.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (s *TicketStore) TransitionStatus(_ context.Context, id string, from []models.AssetStatus, to models.AssetStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return fmt.Errorf("%w: ticket asset %s", status.ErrNotFound, id)
	}
	for _, st := range from {
		if ticket.Status == st {
			ticket.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: ticket %s is %s, expected one of %v",
		status.ErrInvalidState, id, ticket.Status, from)
}

func (s *TicketStore) ListByEvent(_ context.Context, eventID string) ([]*models.TicketAsset, error) {
	return s.list(func(t *models.TicketAsset) bool { return t.EventID == eventID }), nil
}

func (s *TicketStore) ListByPurchaser(_ context.Context, purchaserID string) ([]*models.TicketAsset, error) {
	return s.list(func(t *models.TicketAsset) bool { return t.PurchaserID == purchaserID }), nil
}

func (s *TicketStore) list(match func(*models.TicketAsset) bool) []*models.TicketAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.TicketAsset{}
	for _, t := range s.tickets {
		if match(t) {
			out = append(out, copyTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PurchaseDate.Before(out[j].PurchaseDate)
	})
	return out
}

func (s *TicketStore) CountByStatus(_ context.Context, eventID string) (map[models.AssetStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.AssetStatus]int)
	for _, t := range s.tickets {
		if t.EventID == eventID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func copyTicket(t *models.TicketAsset) *models.TicketAsset {
	dup := *t
	dup.TransferHistory = append([]models.TransferRecord(nil), t.TransferHistory...)
	return &dup
}

type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*models.MintingConfig
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[string]*models.MintingConfig)}
}

func (s *ConfigStore) GetByEvent(_ context.Context, eventID string) (*models.MintingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: minting config for event %s", status.ErrNotFound, eventID)
	}
	dup := *cfg
	return &dup, nil
}

func (s *ConfigStore) Create(_ context.Context, cfg *models.MintingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[cfg.EventID]; ok {
		return fmt.Errorf("minting config for event %s already exists", cfg.EventID)
	}
	dup := *cfg
	s.configs[cfg.EventID] = &dup
	return nil
}

func (s *ConfigStore) Update(_ context.Context, cfg *models.MintingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[cfg.EventID]; !ok {
		return fmt.Errorf("%w: minting config for event %s", status.ErrNotFound, cfg.EventID)
	}
	dup := *cfg
	s.configs[cfg.EventID] = &dup
	return nil
}

type EventStore struct {
	mu     sync.RWMutex
	events map[string]*models.Event
}

func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*models.Event)}
}

func (s *EventStore) Put(event *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *event
	s.events[event.ID] = &dup
}

func (s *EventStore) Get(_ context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, id)
	}
	dup := *event
	return &dup, nil
}
