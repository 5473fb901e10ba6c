package address

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists taxonomy nodes. The hierarchy itself is indexed in memory
// by the service; the store is the durable record.
type Store interface {
	Create(ctx context.Context, a *Address) error
	Get(ctx context.Context, id domain.AddressID) (*Address, error)
	GetByNo(ctx context.Context, no string) (*Address, error)
	UpdateParent(ctx context.Context, id, parentID domain.AddressID) error
	Delete(ctx context.Context, id domain.AddressID) error
	List(ctx context.Context) ([]*Address, error)
}
