package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// InMemoryStore keeps ledger entries in process memory. It is also its own
// TxRunner: a transaction holds the write lock, buffers inserts, and commits
// them only when fn succeeds.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.EntryID]*Entry
	nextID  domain.EntryID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[domain.EntryID]*Entry),
		nextID:  1,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(e)
	return nil
}

func (s *InMemoryStore) CreateAll(ctx context.Context, entries []*Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.createLocked(e)
	}
	return nil
}

func (s *InMemoryStore) createLocked(e *Entry) {
	e.ID = s.nextID
	s.nextID++
	cp := *e
	s.entries[e.ID] = &cp
}

func (s *InMemoryStore) Get(ctx context.Context, id domain.EntryID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemoryStore) ListByPerson(ctx context.Context, person domain.PersonID) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for _, e := range s.entries {
		if e.PersonID == person {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SumByItemPeriod(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumLocked(item, period), nil
}

func (s *InMemoryStore) sumLocked(item domain.ItemID, period domain.Period) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.entries {
		if e.ItemID == item && e.Period == period {
			total = total.Add(e.Money)
		}
	}
	return total
}

func (s *InMemoryStore) BankcardInUse(ctx context.Context, id domain.BankcardID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.BankcardID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ItemInUse(ctx context.Context, id domain.ItemID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ItemID == id {
			return true, nil
		}
	}
	return false, nil
}

// RunInTx runs fn against a buffered view under the write lock. Inserts land
// in the store only when fn returns nil.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, e := range tx.pending {
		s.createLocked(e)
	}
	return nil
}

// memTx is the transactional view. Reads see committed rows plus the pending
// buffer; writes go to the buffer.
type memTx struct {
	store   *InMemoryStore
	pending []*Entry
}

func (t *memTx) Create(ctx context.Context, e *Entry) error {
	t.pending = append(t.pending, e)
	return nil
}

func (t *memTx) CreateAll(ctx context.Context, entries []*Entry) error {
	t.pending = append(t.pending, entries...)
	return nil
}

func (t *memTx) Get(ctx context.Context, id domain.EntryID) (*Entry, error) {
	e, ok := t.store.entries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (t *memTx) ListByPerson(ctx context.Context, person domain.PersonID) ([]*Entry, error) {
	var out []*Entry
	for _, e := range t.store.entries {
		if e.PersonID == person {
			cp := *e
			out = append(out, &cp)
		}
	}
	for _, e := range t.pending {
		if e.PersonID == person {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *memTx) SumByItemPeriod(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, error) {
	total := t.store.sumLocked(item, period)
	for _, e := range t.pending {
		if e.ItemID == item && e.Period == period {
			total = total.Add(e.Money)
		}
	}
	return total, nil
}

func (t *memTx) BankcardInUse(ctx context.Context, id domain.BankcardID) (bool, error) {
	for _, e := range t.store.entries {
		if e.BankcardID == id {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ItemInUse(ctx context.Context, id domain.ItemID) (bool, error) {
	for _, e := range t.store.entries {
		if e.ItemID == id {
			return true, nil
		}
	}
	return false, nil
}
