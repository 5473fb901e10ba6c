package note

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists notices.
type Store interface {
	Create(ctx context.Context, n *Note) error
	Get(ctx context.Context, id domain.NoteID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	ListByPerson(ctx context.Context, person domain.PersonID) ([]*Note, error)
}
