package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/bankcard"
	"paybook/internal/ledger"
	"paybook/internal/payitem"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/requestcontext"
)

type fixture struct {
	svc   *ledger.Service
	store *ledger.InMemoryStore
	items *payitem.Registry
	cards *bankcard.Service
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := requestcontext.WithOperator(context.Background(), "clerk")
	ctx = requestcontext.WithTime(ctx, time.Date(2012, time.March, 15, 10, 0, 0, 0, time.UTC))

	itemStore := payitem.NewInMemoryStore()
	require.NoError(t, payitem.Seed(ctx, itemStore))
	items, err := payitem.NewRegistry(ctx, itemStore)
	require.NoError(t, err)

	cards, err := bankcard.New(bankcard.NewInMemoryStore())
	require.NoError(t, err)

	store := ledger.NewInMemoryStore()
	svc, err := ledger.New(store, store, items, ledger.WithCardDirectory(cards))
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, items: items, cards: cards, ctx: ctx}
}

// boundCard creates a card bound to owner.
func (f *fixture) boundCard(t *testing.T, no string, owner domain.PersonID) *bankcard.Bankcard {
	t.Helper()
	c, err := f.cards.Create(f.ctx, no, "holder")
	require.NoError(t, err)
	c, err = f.cards.BindOwner(f.ctx, c.ID, owner)
	require.NoError(t, err)
	return c
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPost(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1,
		ItemID:   f.items.SysShouldPay.ID,
		Money:    money("1500.00"),
	})
	require.NoError(t, err)
	assert.False(t, e.ID.IsZero())
	assert.Equal(t, "clerk", e.CreateBy)
	// Zero period defaults to the current one.
	assert.Equal(t, domain.NewPeriod(2012, time.March), e.Period)

	total, err := f.svc.PeriodTotal(f.ctx, f.items.SysShouldPay.ID, e.Period)
	require.NoError(t, err)
	assert.True(t, total.Equal(money("1500.00")))
}

func TestPost_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   ledger.PostInput
	}{
		{"missing person", ledger.PostInput{ItemID: 1, Money: money("1")}},
		{"missing item", ledger.PostInput{PersonID: 1, Money: money("1")}},
		{"zero amount", ledger.PostInput{PersonID: 1, ItemID: 1, Money: decimal.Zero}},
		{"three decimals", ledger.PostInput{PersonID: 1, ItemID: 1, Money: money("1.005")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Post(f.ctx, tc.in)
			assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestRemend(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.February)

	entries, err := f.svc.Remend(f.ctx, 1, 0,
		f.items.SysShouldPay.ID, f.items.SysAmend.ID, money("200.00"), period)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Money.Add(entries[1].Money).IsZero())

	from, err := f.svc.PeriodTotal(f.ctx, f.items.SysShouldPay.ID, period)
	require.NoError(t, err)
	assert.True(t, from.Equal(money("-200.00")))
	to, err := f.svc.PeriodTotal(f.ctx, f.items.SysAmend.ID, period)
	require.NoError(t, err)
	assert.True(t, to.Equal(money("200.00")))
}

func TestRemend_SameItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Remend(f.ctx, 1, 0,
		f.items.SysShouldPay.ID, f.items.SysShouldPay.ID, money("1"), domain.Period{})
	assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
}

func TestForward(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.January)
	card := f.boundCard(t, "6213360000000000000", 1)
	newCard := f.boundCard(t, "6213360000000000001", 1)

	src, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: card.ID, ItemID: f.items.BankShouldPay.ID,
		Money: money("300.00"), Period: period,
	})
	require.NoError(t, err)

	entries, err := f.svc.Forward(f.ctx, src.ID, f.items.BankFailed.ID, newCard.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Both rows stay in the source period.
	for _, e := range entries {
		assert.Equal(t, period, e.Period)
	}
	reversal, restatement := entries[0], entries[1]
	assert.Equal(t, src.ItemID, reversal.ItemID)
	assert.Equal(t, src.BankcardID, reversal.BankcardID)
	assert.True(t, reversal.Money.Equal(money("-300.00")))
	assert.Equal(t, f.items.BankFailed.ID, restatement.ItemID)
	assert.Equal(t, newCard.ID, restatement.BankcardID)
	assert.True(t, restatement.Money.Equal(money("300.00")))

	// The source item nets to zero.
	total, err := f.svc.PeriodTotal(f.ctx, f.items.BankShouldPay.ID, period)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestAmend(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.January)
	srcCard := f.boundCard(t, "6213360000000000000", 1)
	newCard := f.boundCard(t, "6213360000000000001", 2)

	src, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: srcCard.ID, ItemID: f.items.SysShouldPay.ID,
		Money: money("1500.00"), Period: period,
	})
	require.NoError(t, err)

	entries, err := f.svc.Amend(f.ctx, src.ID, newCard.No, money("1500.00"))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for _, e := range entries {
		assert.Equal(t, period, e.Period)
	}
	// New card: amount moves through sys_amend into payable.
	assert.Equal(t, newCard.OwnerID, entries[0].PersonID)
	assert.Equal(t, f.items.SysAmend.ID, entries[0].ItemID)
	assert.True(t, entries[0].Money.Equal(money("-1500.00")))
	assert.Equal(t, f.items.BankShouldPay.ID, entries[1].ItemID)
	assert.True(t, entries[1].Money.Equal(money("1500.00")))
	// Original card: the obligation is restated as payable.
	assert.Equal(t, src.PersonID, entries[2].PersonID)
	assert.Equal(t, f.items.SysShouldPay.ID, entries[2].ItemID)
	assert.True(t, entries[2].Money.Equal(money("-1500.00")))
	assert.Equal(t, f.items.BankShouldPay.ID, entries[3].ItemID)
	assert.True(t, entries[3].Money.Equal(money("1500.00")))

	// The obligation item nets to zero after the amendment.
	total, err := f.svc.PeriodTotal(f.ctx, f.items.SysShouldPay.ID, period)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestAmend_Preconditions(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.January)
	srcCard := f.boundCard(t, "6213360000000000000", 1)
	newCard := f.boundCard(t, "6213360000000000001", 2)
	unbound, err := f.cards.Create(f.ctx, "6213360000000000002", "nobody")
	require.NoError(t, err)

	obligation, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: srcCard.ID, ItemID: f.items.SysShouldPay.ID,
		Money: money("1500.00"), Period: period,
	})
	require.NoError(t, err)
	other, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: srcCard.ID, ItemID: f.items.BankShouldPay.ID,
		Money: money("100.00"), Period: period,
	})
	require.NoError(t, err)

	t.Run("source item must be the obligation item", func(t *testing.T) {
		_, err := f.svc.Amend(f.ctx, other.ID, newCard.No, money("100.00"))
		assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
	})
	t.Run("new card must be bound", func(t *testing.T) {
		_, err := f.svc.Amend(f.ctx, obligation.ID, unbound.No, money("100.00"))
		assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
	})
	t.Run("unknown new card", func(t *testing.T) {
		_, err := f.svc.Amend(f.ctx, obligation.ID, "6213360000000000009", money("100.00"))
		assert.True(t, dErrors.IsCode(err, dErrors.CodeNotFound))
	})
	t.Run("amount below minimum", func(t *testing.T) {
		_, err := f.svc.Amend(f.ctx, obligation.ID, newCard.No, money("0.001"))
		assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
	})
	t.Run("amount above maximum", func(t *testing.T) {
		_, err := f.svc.Amend(f.ctx, obligation.ID, newCard.No, money("1000000.01"))
		assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
	})

	// No partial rows from the rejected calls.
	entries, err := f.svc.ListByPerson(f.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSettleFailures(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.January)
	card := f.boundCard(t, "6213360000000000000", 1)

	_, err := f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: card.ID, ItemID: f.items.BankShouldPay.ID,
		Money: money("100.00"), Period: period,
	})
	require.NoError(t, err)

	settled, err := f.svc.IsPeriodSettled(f.ctx, period)
	require.NoError(t, err)
	assert.False(t, settled)

	entries, err := f.svc.SettleFailures(f.ctx, period, []ledger.Failure{
		{CardNo: card.No, Money: money("100.00")},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.items.BankFailed.ID, entries[0].ItemID)

	settled, err = f.svc.IsPeriodSettled(f.ctx, period)
	require.NoError(t, err)
	assert.True(t, settled)

	// A balanced period rejects another settlement run.
	_, err = f.svc.SettleFailures(f.ctx, period, []ledger.Failure{
		{CardNo: card.No, Money: money("1.00")},
	})
	assert.True(t, dErrors.IsCode(err, dErrors.CodeStatus))
}

func TestIsPeriodSettled_Epsilon(t *testing.T) {
	f := newFixture(t)
	period := domain.NewPeriod(2012, time.January)
	card := f.boundCard(t, "6213360000000000000", 1)

	// An empty period balances trivially.
	settled, err := f.svc.IsPeriodSettled(f.ctx, period)
	require.NoError(t, err)
	assert.True(t, settled)

	_, err = f.svc.Post(f.ctx, ledger.PostInput{
		PersonID: 1, BankcardID: card.ID, ItemID: f.items.BankShouldPay.ID,
		Money: money("0.01"), Period: period,
	})
	require.NoError(t, err)

	// A one-cent residual exceeds the epsilon.
	settled, err = f.svc.IsPeriodSettled(f.ctx, period)
	require.NoError(t, err)
	assert.False(t, settled)
}
