// Package tree implements the parent/child hierarchy shared by the address
// and pay item taxonomies. Nodes live in an arena keyed by id; the parent
// relation is kept acyclic by checking every reparent before linking, never
// by trusting that a cycle "happened not to form so far".
package tree

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when a node id is not in the arena.
	ErrNotFound = errors.New("tree: node not found")
	// ErrExists is returned when adding a node whose id is already present.
	ErrExists = errors.New("tree: node already exists")
	// ErrCycle is returned when a reparent would make a node its own
	// ancestor.
	ErrCycle = errors.New("tree: reparent would create a cycle")
	// ErrHasChildren blocks removal of a node that still has children.
	ErrHasChildren = errors.New("tree: node has children")
)

type node[T any] struct {
	value    T
	parent   int64 // 0 means root
	children []int64
}

// Arena holds the nodes of one taxonomy. All operations are safe for
// concurrent use; Reparent performs its cycle check and the relink under a
// single write lock so a concurrent move cannot slip a cycle past the check.
type Arena[T any] struct {
	mu    sync.RWMutex
	nodes map[int64]*node[T]
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{nodes: make(map[int64]*node[T])}
}

// Add inserts a node under parentID (0 for a root node).
func (a *Arena[T]) Add(id int64, value T, parentID int64) error {
	if id == 0 {
		return ErrNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.nodes[id]; ok {
		return ErrExists
	}
	if parentID != 0 {
		parent, ok := a.nodes[parentID]
		if !ok {
			return ErrNotFound
		}
		parent.children = append(parent.children, id)
	}
	a.nodes[id] = &node[T]{value: value, parent: parentID}
	return nil
}

// Value returns the stored value for id.
func (a *Arena[T]) Value(id int64) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	if !ok {
		var zero T
		return zero, false
	}
	return n.value, true
}

// SetValue replaces the stored value for id.
func (a *Arena[T]) SetValue(id int64, value T) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.nodes[id]
	if !ok {
		return ErrNotFound
	}
	n.value = value
	return nil
}

// Parent returns the parent id of id, or 0 for a root node.
func (a *Arena[T]) Parent(id int64) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	if !ok {
		return 0, ErrNotFound
	}
	return n.parent, nil
}

// Descendants returns every node reachable by child links from id, in
// depth-first order. The slice is computed eagerly and is bounded by the
// arena size.
func (a *Arena[T]) Descendants(id int64) ([]int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.nodes[id]; !ok {
		return nil, ErrNotFound
	}
	return a.descendantsLocked(id), nil
}

func (a *Arena[T]) descendantsLocked(id int64) []int64 {
	var out []int64
	var walk func(int64)
	walk = func(cur int64) {
		for _, child := range a.nodes[cur].children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// Ancestors returns the chain of parents from id's immediate parent to the
// root.
func (a *Arena[T]) Ancestors(id int64) ([]int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	var out []int64
	for cur := n.parent; cur != 0; cur = a.nodes[cur].parent {
		out = append(out, cur)
	}
	return out, nil
}

// IsAncestorOf reports whether a node with id ancestor appears in the parent
// chain of id.
func (a *Arena[T]) IsAncestorOf(ancestor, id int64) (bool, error) {
	chain, err := a.Ancestors(id)
	if err != nil {
		return false, err
	}
	for _, cur := range chain {
		if cur == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// IsDescendantOf reports whether id appears under ancestor.
func (a *Arena[T]) IsDescendantOf(id, ancestor int64) (bool, error) {
	return a.IsAncestorOf(ancestor, id)
}

// Reparent moves id under newParentID (0 detaches it to a root). It fails
// with ErrCycle when newParentID is id itself or any descendant of id, and
// leaves the arena unchanged on failure.
func (a *Arena[T]) Reparent(id, newParentID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nodes[id]
	if !ok {
		return ErrNotFound
	}
	if newParentID != 0 {
		if _, ok := a.nodes[newParentID]; !ok {
			return ErrNotFound
		}
		if newParentID == id {
			return ErrCycle
		}
		for _, d := range a.descendantsLocked(id) {
			if d == newParentID {
				return ErrCycle
			}
		}
	}

	if n.parent != 0 {
		a.unlinkChildLocked(n.parent, id)
	}
	if newParentID != 0 {
		a.nodes[newParentID].children = append(a.nodes[newParentID].children, id)
	}
	n.parent = newParentID
	return nil
}

// Remove deletes a leaf node. Nodes with children are rejected; external
// references (persons, ledger rows) are the owning service's concern.
func (a *Arena[T]) Remove(id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nodes[id]
	if !ok {
		return ErrNotFound
	}
	if len(n.children) > 0 {
		return ErrHasChildren
	}
	if n.parent != 0 {
		a.unlinkChildLocked(n.parent, id)
	}
	delete(a.nodes, id)
	return nil
}

// Len returns the number of nodes in the arena.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (a *Arena[T]) unlinkChildLocked(parentID, id int64) {
	children := a.nodes[parentID].children
	for i, child := range children {
		if child == id {
			a.nodes[parentID].children = append(children[:i], children[i+1:]...)
			return
		}
	}
}
