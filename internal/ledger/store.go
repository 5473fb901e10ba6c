package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
)

// Store persists ledger entries. Implementations never mutate or delete
// rows.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	CreateAll(ctx context.Context, entries []*Entry) error
	Get(ctx context.Context, id domain.EntryID) (*Entry, error)
	ListByPerson(ctx context.Context, person domain.PersonID) ([]*Entry, error)
	SumByItemPeriod(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, error)

	// Reference checks for the card and item taxonomies.
	BankcardInUse(ctx context.Context, id domain.BankcardID) (bool, error)
	ItemInUse(ctx context.Context, id domain.ItemID) (bool, error)
}

// TxRunner executes fn against a transactional view of the store. The
// postgres runner wraps a sql.Tx; the memory runner buffers writes and
// commits them under the store lock.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(Store) error) error
}
