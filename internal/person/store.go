package person

import (
	"context"

	"paybook/pkg/domain"
)

// Store persists persons. Update compares the record's Version against the
// stored row and returns sentinel.ErrConflict on mismatch; on success the
// record's Version is bumped.
type Store interface {
	Create(ctx context.Context, p *Person) error
	Get(ctx context.Context, id domain.PersonID) (*Person, error)
	GetByIDCard(ctx context.Context, idcard string) (*Person, error)
	Update(ctx context.Context, p *Person) error

	// AddressInUse satisfies the address taxonomy's reference check.
	AddressInUse(ctx context.Context, id domain.AddressID) (bool, error)
}
