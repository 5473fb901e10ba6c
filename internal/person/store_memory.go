package person

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// InMemoryStore keeps persons in process memory. Used by tests and by the
// server when no database is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	byID     map[domain.PersonID]*Person
	byIDCard map[string]domain.PersonID
	nextID   domain.PersonID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[domain.PersonID]*Person),
		byIDCard: make(map[string]domain.PersonID),
		nextID:   1,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, p *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIDCard[p.IDCard]; exists {
		return sentinel.ErrConflict
	}
	p.ID = s.nextID
	s.nextID++
	if p.Version == 0 {
		p.Version = 1
	}
	cp := *p
	s.byID[p.ID] = &cp
	s.byIDCard[p.IDCard] = p.ID
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id domain.PersonID) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) GetByIDCard(ctx context.Context, idcard string) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIDCard[idcard]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) Update(ctx context.Context, p *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != p.Version {
		return sentinel.ErrConflict
	}
	p.Version++
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) AddressInUse(ctx context.Context, id domain.AddressID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byID {
		if p.AddressID == id {
			return true, nil
		}
	}
	return false, nil
}
