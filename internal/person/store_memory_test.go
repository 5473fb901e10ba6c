package person_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/person"
	"paybook/pkg/platform/sentinel"
)

func TestInMemoryStore_VersionConflict(t *testing.T) {
	store := person.NewInMemoryStore()
	ctx := context.Background()

	p := &person.Person{
		IDCard:       "110101199001011234",
		Name:         "Wang Wei",
		Birthday:     time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		AddressID:    1,
		PersonalWage: decimal.NewFromInt(1500),
		Status:       person.StatusRegistered,
	}
	require.NoError(t, store.Create(ctx, p))
	assert.EqualValues(t, 1, p.Version)

	// Two readers load the same version; only the first writer wins.
	a, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	b, err := store.Get(ctx, p.ID)
	require.NoError(t, err)

	a.Status = person.StatusNormalRetire
	require.NoError(t, store.Update(ctx, a))
	assert.EqualValues(t, 2, a.Version)

	b.Status = person.StatusDeadUnretired
	err = store.Update(ctx, b)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, person.StatusNormalRetire, got.Status)
}

func TestInMemoryStore_DuplicateIDCard(t *testing.T) {
	store := person.NewInMemoryStore()
	ctx := context.Background()

	p := &person.Person{IDCard: "110101199001011234", Name: "a", Status: person.StatusRegistered}
	require.NoError(t, store.Create(ctx, p))

	dup := &person.Person{IDCard: "110101199001011234", Name: "b", Status: person.StatusRegistered}
	assert.ErrorIs(t, store.Create(ctx, dup), sentinel.ErrConflict)
}

func TestInMemoryStore_AddressInUse(t *testing.T) {
	store := person.NewInMemoryStore()
	ctx := context.Background()

	p := &person.Person{IDCard: "110101199001011234", Name: "a", AddressID: 7, Status: person.StatusRegistered}
	require.NoError(t, store.Create(ctx, p))

	used, err := store.AddressInUse(ctx, 7)
	require.NoError(t, err)
	assert.True(t, used)

	used, err = store.AddressInUse(ctx, 8)
	require.NoError(t, err)
	assert.False(t, used)
}
