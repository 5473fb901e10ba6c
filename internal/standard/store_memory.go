package standard

import (
	"context"
	"sync"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// InMemoryStore keeps standards and bindings in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	standards map[domain.StandardID]*Standard
	byName    map[string]domain.StandardID
	assocs    map[domain.AssocID]*Assoc
	nextStdID domain.StandardID
	nextAssoc domain.AssocID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		standards: make(map[domain.StandardID]*Standard),
		byName:    make(map[string]domain.StandardID),
		assocs:    make(map[domain.AssocID]*Assoc),
		nextStdID: 1,
		nextAssoc: 1,
	}
}

func (s *InMemoryStore) CreateStandard(ctx context.Context, st *Standard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[st.Name]; exists {
		return sentinel.ErrConflict
	}
	st.ID = s.nextStdID
	s.nextStdID++
	cp := *st
	s.standards[st.ID] = &cp
	s.byName[st.Name] = st.ID
	return nil
}

func (s *InMemoryStore) GetStandard(ctx context.Context, id domain.StandardID) (*Standard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.standards[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *InMemoryStore) ListStandards(ctx context.Context) ([]*Standard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Standard, 0, len(s.standards))
	for _, st := range s.standards {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) CreateAssoc(ctx context.Context, a *Assoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextAssoc
	s.nextAssoc++
	cp := *a
	s.assocs[a.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetAssoc(ctx context.Context, id domain.AssocID) (*Assoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assocs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryStore) ListAssocsByPair(ctx context.Context, person domain.PersonID, std domain.StandardID) ([]*Assoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Assoc
	for _, a := range s.assocs {
		if a.PersonID == person && a.StandardID == std {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListAssocsByPerson(ctx context.Context, person domain.PersonID) ([]*Assoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Assoc
	for _, a := range s.assocs {
		if a.PersonID == person {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateAssoc(ctx context.Context, a *Assoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assocs[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *a
	s.assocs[a.ID] = &cp
	return nil
}
