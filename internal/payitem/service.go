package payitem

import (
	"context"
	"errors"
	"fmt"

	"paybook/internal/tree"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
)

// RefChecker reports whether ledger rows still reference an item. The ledger
// store implements it.
type RefChecker interface {
	ItemInUse(ctx context.Context, id domain.ItemID) (bool, error)
}

// Service owns the item taxonomy the same way the address service owns its
// tree: the arena indexes the hierarchy, the store is the durable record.
type Service struct {
	store Store
	arena *tree.Arena[Item]
	refs  RefChecker
}

func NewService(store Store, refs RefChecker) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pay item store is required")
	}
	return &Service{store: store, arena: tree.NewArena[Item](), refs: refs}, nil
}

// Load rebuilds the hierarchy index from the store.
func (s *Service) Load(ctx context.Context) error {
	all, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load pay items: %w", err)
	}

	pending := all
	for len(pending) > 0 {
		var next []*Item
		progressed := false
		for _, item := range pending {
			err := s.arena.Add(int64(item.ID), *item, int64(item.ParentID))
			switch {
			case err == nil:
				progressed = true
			case errors.Is(err, tree.ErrNotFound):
				next = append(next, item)
			default:
				return fmt.Errorf("index pay item %d: %w", item.ID, err)
			}
		}
		if !progressed {
			return dErrors.Newf(dErrors.CodeConfiguration,
				"pay item tree has %d nodes with missing parents", len(next))
		}
		pending = next
	}
	return nil
}

// Create adds an item under parent (zero for a root).
func (s *Service) Create(ctx context.Context, name string, direct Direct, parent domain.ItemID) (*Item, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if direct != DirectIn && direct != DirectOut {
		return nil, dErrors.New(dErrors.CodeValidation, "direct must be inbound or outbound")
	}
	if !parent.IsZero() {
		if _, ok := s.arena.Value(int64(parent)); !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "parent item %d not found", parent)
		}
	}

	item := &Item{Name: name, Direct: direct, ParentID: parent}
	if err := s.store.Create(ctx, item); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "item name %q already used", name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create pay item")
	}
	if err := s.arena.Add(int64(item.ID), *item, int64(parent)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "index pay item")
	}
	return item, nil
}

// Reparent moves an item, rejecting cycles.
func (s *Service) Reparent(ctx context.Context, id, newParent domain.ItemID) error {
	oldParent, err := s.arena.Parent(int64(id))
	if err != nil {
		return dErrors.Newf(dErrors.CodeNotFound, "pay item %d not found", id)
	}

	if err := s.arena.Reparent(int64(id), int64(newParent)); err != nil {
		switch {
		case errors.Is(err, tree.ErrCycle):
			return dErrors.Newf(dErrors.CodeCycle, "pay item %d cannot be moved under its own descendant %d", id, newParent)
		case errors.Is(err, tree.ErrNotFound):
			return dErrors.Newf(dErrors.CodeNotFound, "parent item %d not found", newParent)
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "reparent pay item")
		}
	}

	if err := s.store.UpdateParent(ctx, id, newParent); err != nil {
		_ = s.arena.Reparent(int64(id), oldParent)
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist pay item parent")
	}

	if item, ok := s.arena.Value(int64(id)); ok {
		item.ParentID = newParent
		_ = s.arena.SetValue(int64(id), item)
	}
	return nil
}

// Delete removes an item; items with children or with ledger rows posted
// against them are rejected.
func (s *Service) Delete(ctx context.Context, id domain.ItemID) error {
	if _, ok := s.arena.Value(int64(id)); !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "pay item %d not found", id)
	}
	if s.refs != nil {
		used, err := s.refs.ItemInUse(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check pay item references")
		}
		if used {
			return dErrors.Newf(dErrors.CodeReferenced, "pay item %d has ledger entries", id)
		}
	}

	if err := s.arena.Remove(int64(id)); err != nil {
		if errors.Is(err, tree.ErrHasChildren) {
			return dErrors.Newf(dErrors.CodeReferenced, "pay item %d still has children", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "remove pay item")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete pay item")
	}
	return nil
}

// Descendants returns every item under id, depth-first.
func (s *Service) Descendants(ctx context.Context, id domain.ItemID) ([]*Item, error) {
	ids, err := s.arena.Descendants(int64(id))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "pay item %d not found", id)
	}
	out := make([]*Item, 0, len(ids))
	for _, nid := range ids {
		if item, ok := s.arena.Value(nid); ok {
			cp := item
			out = append(out, &cp)
		}
	}
	return out, nil
}
