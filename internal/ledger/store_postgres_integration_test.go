//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/address"
	"paybook/internal/bankcard"
	"paybook/internal/ledger"
	"paybook/internal/payitem"
	"paybook/internal/person"
	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/testutil/containers"
)

type pgFixture struct {
	pg     *containers.PostgresContainer
	store  *ledger.PostgresStore
	person domain.PersonID
	card   domain.BankcardID
	item   domain.ItemID
}

// seedFixture creates the referenced address, person, item and card rows.
func seedFixture(t *testing.T, pg *containers.PostgresContainer) *pgFixture {
	t.Helper()
	ctx := context.Background()

	addr := &address.Address{No: "42", Name: "test-district"}
	require.NoError(t, address.NewPostgres(pg.DB).Create(ctx, addr))

	itemStore := payitem.NewPostgres(pg.DB)
	require.NoError(t, payitem.Seed(ctx, itemStore))
	items, err := payitem.NewRegistry(ctx, itemStore)
	require.NoError(t, err)

	p := &person.Person{
		IDCard:       "42272519510701001X",
		Name:         "Wang Wei",
		Birthday:     time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC),
		AddressID:    addr.ID,
		SecuriNo:     "SN-001",
		PersonalWage: decimal.NewFromInt(1500),
		Status:       person.StatusRegistered,
		CreateBy:     "it",
		CreateTime:   time.Now().UTC(),
	}
	require.NoError(t, person.NewPostgres(pg.DB).Create(ctx, p))

	card := &bankcard.Bankcard{
		No:         "6213360000000000000",
		Name:       "Wang Wei",
		OwnerID:    p.ID,
		CreateBy:   "it",
		CreateTime: time.Now().UTC(),
	}
	require.NoError(t, bankcard.NewPostgres(pg.DB).Create(ctx, card))

	return &pgFixture{
		pg:     pg,
		store:  ledger.NewPostgres(pg.DB),
		person: p.ID,
		card:   card.ID,
		item:   items.SysShouldPay.ID,
	}
}

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	t.Cleanup(func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(context.Background())
	})
	f := seedFixture(t, pg)
	ctx := context.Background()
	period := domain.NewPeriod(2012, time.January)

	t.Run("create and get round-trips the period as the first of month", func(t *testing.T) {
		e := &ledger.Entry{
			PersonID:   f.person,
			BankcardID: f.card,
			ItemID:     f.item,
			Money:      decimal.RequireFromString("1500.00"),
			Period:     period,
			CreateDate: time.Now().UTC(),
			CreateBy:   "it",
		}
		require.NoError(t, f.store.Create(ctx, e))
		require.False(t, e.ID.IsZero())

		got, err := f.store.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, period, got.Period)
		assert.Equal(t, f.card, got.BankcardID)
		assert.True(t, got.Money.Equal(e.Money))
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := f.store.Get(ctx, 999999)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("sum by item and period", func(t *testing.T) {
		e := &ledger.Entry{
			PersonID: f.person, ItemID: f.item,
			Money:  decimal.RequireFromString("-200.00"),
			Period: period, CreateDate: time.Now().UTC(), CreateBy: "it",
		}
		require.NoError(t, f.store.Create(ctx, e))

		total, err := f.store.SumByItemPeriod(ctx, f.item, period)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("1300.00")), "got %s", total)

		// Other periods are untouched.
		other, err := f.store.SumByItemPeriod(ctx, f.item, period.Next())
		require.NoError(t, err)
		assert.True(t, other.IsZero())
	})

	t.Run("reference checks", func(t *testing.T) {
		used, err := f.store.BankcardInUse(ctx, f.card)
		require.NoError(t, err)
		assert.True(t, used)

		used, err = f.store.ItemInUse(ctx, f.item)
		require.NoError(t, err)
		assert.True(t, used)

		used, err = f.store.BankcardInUse(ctx, 999999)
		require.NoError(t, err)
		assert.False(t, used)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		before, err := f.store.SumByItemPeriod(ctx, f.item, period)
		require.NoError(t, err)

		tx, err := pg.DB.BeginTx(ctx, nil)
		require.NoError(t, err)
		txStore := ledger.NewPostgresTx(tx)
		require.NoError(t, txStore.Create(ctx, &ledger.Entry{
			PersonID: f.person, ItemID: f.item,
			Money:  decimal.RequireFromString("50.00"),
			Period: period, CreateDate: time.Now().UTC(), CreateBy: "it",
		}))
		require.NoError(t, tx.Rollback())

		after, err := f.store.SumByItemPeriod(ctx, f.item, period)
		require.NoError(t, err)
		assert.True(t, after.Equal(before))
	})
}
