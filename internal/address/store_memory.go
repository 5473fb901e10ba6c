package address

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[domain.AddressID]*Address
	byNo   map[string]domain.AddressID
	nextID domain.AddressID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID: make(map[domain.AddressID]*Address),
		byNo: make(map[string]domain.AddressID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, a *Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byNo[a.No]; ok {
		return sentinel.ErrConflict
	}
	s.nextID++
	a.ID = s.nextID
	cp := *a
	s.byID[a.ID] = &cp
	s.byNo[a.No] = a.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.AddressID) (*Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryStore) GetByNo(_ context.Context, no string) (*Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNo[no]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) UpdateParent(_ context.Context, id, parentID domain.AddressID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	a.ParentID = parentID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.AddressID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byNo, a.No)
	delete(s.byID, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Address, 0, len(s.byID))
	for _, a := range s.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
