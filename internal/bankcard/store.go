package bankcard

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists bank cards.
type Store interface {
	Create(ctx context.Context, c *Bankcard) error
	Get(ctx context.Context, id domain.BankcardID) (*Bankcard, error)
	GetByNo(ctx context.Context, no string) (*Bankcard, error)
	UpdateOwner(ctx context.Context, id domain.BankcardID, owner domain.PersonID) error
	Delete(ctx context.Context, id domain.BankcardID) error
	ListByOwner(ctx context.Context, owner domain.PersonID) ([]*Bankcard, error)
}
