package payitem

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[domain.ItemID]*Item
	byName map[string]domain.ItemID
	nextID domain.ItemID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[domain.ItemID]*Item),
		byName: make(map[string]domain.ItemID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[item.Name]; ok {
		return sentinel.ErrConflict
	}
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.byID[item.ID] = &cp
	s.byName[item.Name] = item.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.ItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *InMemoryStore) GetByName(_ context.Context, name string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) UpdateParent(_ context.Context, id, parentID domain.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.ParentID = parentID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, item.Name)
	delete(s.byID, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Item, 0, len(s.byID))
	for _, item := range s.byID {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}
