package standard

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists standards and person/standard bindings.
type Store interface {
	CreateStandard(ctx context.Context, st *Standard) error
	GetStandard(ctx context.Context, id domain.StandardID) (*Standard, error)
	ListStandards(ctx context.Context) ([]*Standard, error)

	CreateAssoc(ctx context.Context, a *Assoc) error
	GetAssoc(ctx context.Context, id domain.AssocID) (*Assoc, error)
	ListAssocsByPair(ctx context.Context, person domain.PersonID, std domain.StandardID) ([]*Assoc, error)
	ListAssocsByPerson(ctx context.Context, person domain.PersonID) ([]*Assoc, error)
	UpdateAssoc(ctx context.Context, a *Assoc) error
}
