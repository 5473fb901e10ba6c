package note

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[domain.NoteID]*Note
	nextID domain.NoteID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[domain.NoteID]*Note)}
}

func (s *InMemoryStore) Create(_ context.Context, n *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n.ID = s.nextID
	cp := *n
	s.byID[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.NoteID) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, n *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[n.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *n
	s.byID[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListByPerson(_ context.Context, person domain.PersonID) ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Note
	for _, n := range s.byID {
		if n.PersonID == person {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}
