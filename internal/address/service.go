package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"paybook/internal/audit"
	"paybook/internal/tree"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/requestcontext"
)

// RefChecker reports whether anything outside the taxonomy still references
// an address. The person store implements it.
type RefChecker interface {
	AddressInUse(ctx context.Context, id domain.AddressID) (bool, error)
}

// Service owns the address taxonomy. The arena is the authoritative
// hierarchy index, loaded from the store at startup; mutations write the
// arena first (its lock covers the cycle check) and roll back if the store
// write fails.
type Service struct {
	store  Store
	arena  *tree.Arena[Address]
	refs   RefChecker
	logger *slog.Logger
	audit  audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Emitter) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithRefChecker(refs RefChecker) Option {
	return func(s *Service) { s.refs = refs }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("address store is required")
	}
	svc := &Service{store: store, arena: tree.NewArena[Address]()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Load rebuilds the hierarchy index from the store. Nodes are inserted
// parents-first; a dangling parent reference means the stored tree is
// corrupt and loading fails.
func (s *Service) Load(ctx context.Context) error {
	all, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}

	pending := all
	for len(pending) > 0 {
		var next []*Address
		progressed := false
		for _, a := range pending {
			err := s.arena.Add(int64(a.ID), *a, int64(a.ParentID))
			switch {
			case err == nil:
				progressed = true
			case errors.Is(err, tree.ErrNotFound):
				next = append(next, a)
			default:
				return fmt.Errorf("index address %d: %w", a.ID, err)
			}
		}
		if !progressed {
			return dErrors.Newf(dErrors.CodeConfiguration,
				"address tree has %d nodes with missing parents", len(next))
		}
		pending = next
	}
	return nil
}

// Create adds a node under parent (zero for a root).
func (s *Service) Create(ctx context.Context, no, name string, parent domain.AddressID) (*Address, error) {
	if no == "" || len(no) > 11 {
		return nil, dErrors.New(dErrors.CodeValidation, "administrative code must be 1-11 characters")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !parent.IsZero() {
		if _, ok := s.arena.Value(int64(parent)); !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "parent address %d not found", parent)
		}
	}

	a := &Address{No: no, Name: name, ParentID: parent}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "administrative code %q already used", no)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create address")
	}
	if err := s.arena.Add(int64(a.ID), *a, int64(parent)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "index address")
	}

	s.emit(ctx, audit.ActionAddressCreated, map[string]string{
		"no": a.No, "name": a.Name,
	})
	return a, nil
}

// Get returns one node.
func (s *Service) Get(ctx context.Context, id domain.AddressID) (*Address, error) {
	a, ok := s.arena.Value(int64(id))
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "address %d not found", id)
	}
	return &a, nil
}

// Exists reports whether the node is known.
func (s *Service) Exists(ctx context.Context, id domain.AddressID) (bool, error) {
	_, ok := s.arena.Value(int64(id))
	return ok, nil
}

// Reparent moves a node. The arena performs the cycle check and the relink
// under its write lock; the store write follows, and the arena move is
// undone if it fails.
func (s *Service) Reparent(ctx context.Context, id, newParent domain.AddressID) error {
	oldParent, err := s.arena.Parent(int64(id))
	if err != nil {
		return dErrors.Newf(dErrors.CodeNotFound, "address %d not found", id)
	}

	if err := s.arena.Reparent(int64(id), int64(newParent)); err != nil {
		switch {
		case errors.Is(err, tree.ErrCycle):
			return dErrors.Newf(dErrors.CodeCycle, "address %d cannot be moved under its own descendant %d", id, newParent)
		case errors.Is(err, tree.ErrNotFound):
			return dErrors.Newf(dErrors.CodeNotFound, "parent address %d not found", newParent)
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "reparent address")
		}
	}

	if err := s.store.UpdateParent(ctx, id, newParent); err != nil {
		// Keep index and store consistent.
		_ = s.arena.Reparent(int64(id), oldParent)
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist address parent")
	}

	if a, ok := s.arena.Value(int64(id)); ok {
		a.ParentID = newParent
		_ = s.arena.SetValue(int64(id), a)
	}
	return nil
}

// Delete removes a node. Nodes with children or with persons registered
// under them are rejected; the taxonomy does not cascade.
func (s *Service) Delete(ctx context.Context, id domain.AddressID) error {
	if _, ok := s.arena.Value(int64(id)); !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "address %d not found", id)
	}
	if s.refs != nil {
		used, err := s.refs.AddressInUse(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check address references")
		}
		if used {
			return dErrors.Newf(dErrors.CodeReferenced, "address %d is referenced by persons", id)
		}
	}

	if err := s.arena.Remove(int64(id)); err != nil {
		if errors.Is(err, tree.ErrHasChildren) {
			return dErrors.Newf(dErrors.CodeReferenced, "address %d still has children", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "remove address")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete address")
	}
	return nil
}

// Descendants returns every node under id, depth-first. The forms layer
// uses it to scope an operator's visible addresses.
func (s *Service) Descendants(ctx context.Context, id domain.AddressID) ([]*Address, error) {
	ids, err := s.arena.Descendants(int64(id))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "address %d not found", id)
	}
	return s.resolve(ids), nil
}

// Ancestors returns the chain from id's parent to the root.
func (s *Service) Ancestors(ctx context.Context, id domain.AddressID) ([]*Address, error) {
	ids, err := s.arena.Ancestors(int64(id))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "address %d not found", id)
	}
	return s.resolve(ids), nil
}

func (s *Service) resolve(ids []int64) []*Address {
	out := make([]*Address, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.arena.Value(id); ok {
			cp := a
			out = append(out, &cp)
		}
	}
	return out
}

func (s *Service) emit(ctx context.Context, action audit.Action, details map[string]string) {
	if s.audit == nil {
		return
	}
	ev := audit.Event{Operator: requestcontext.Operator(ctx), Action: action, Details: details}
	if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
