package bankcard

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// InMemoryStore keeps bank cards in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[domain.BankcardID]*Bankcard
	byNo   map[string]domain.BankcardID
	nextID domain.BankcardID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[domain.BankcardID]*Bankcard),
		byNo:   make(map[string]domain.BankcardID),
		nextID: 1,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, c *Bankcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNo[c.No]; exists {
		return sentinel.ErrConflict
	}
	c.ID = s.nextID
	s.nextID++
	cp := *c
	s.byID[c.ID] = &cp
	s.byNo[c.No] = c.ID
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id domain.BankcardID) (*Bankcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) GetByNo(ctx context.Context, no string) (*Bankcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNo[no]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) UpdateOwner(ctx context.Context, id domain.BankcardID, owner domain.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.OwnerID = owner
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id domain.BankcardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byNo, c.No)
	delete(s.byID, id)
	return nil
}

func (s *InMemoryStore) ListByOwner(ctx context.Context, owner domain.PersonID) ([]*Bankcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Bankcard
	for _, c := range s.byID {
		if c.OwnerID == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
