package payitem

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists taxonomy items.
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id domain.ItemID) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	UpdateParent(ctx context.Context, id, parentID domain.ItemID) error
	Delete(ctx context.Context, id domain.ItemID) error
	List(ctx context.Context) ([]*Item, error)
}
