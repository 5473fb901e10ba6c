package address_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/address"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
)

type fakeRefs struct {
	used map[domain.AddressID]bool
}

func (f *fakeRefs) AddressInUse(_ context.Context, id domain.AddressID) (bool, error) {
	return f.used[id], nil
}

func newService(t *testing.T, opts ...address.Option) *address.Service {
	t.Helper()
	svc, err := address.New(address.NewInMemoryStore(), opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestCreateAndDescendants(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	province, err := svc.Create(ctx, "42", "hubei", 0)
	require.NoError(t, err)
	city, err := svc.Create(ctx, "4227", "enshi", province.ID)
	require.NoError(t, err)
	town, err := svc.Create(ctx, "422725", "xianfeng", city.ID)
	require.NoError(t, err)

	desc, err := svc.Descendants(ctx, province.ID)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, city.ID, desc[0].ID)
	assert.Equal(t, town.ID, desc[1].ID)

	chain, err := svc.Ancestors(ctx, town.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, city.ID, chain[0].ID)
	assert.Equal(t, province.ID, chain[1].ID)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "nameless", 0)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))

	_, err = svc.Create(ctx, "42", "hubei", 0)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "42", "duplicate-code", 0)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))

	_, err = svc.Create(ctx, "43", "orphan", domain.AddressID(99))
	assert.True(t, dErrors.IsCode(err, dErrors.CodeNotFound))
}

func TestReparent_CycleRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "1", "a", 0)
	b, _ := svc.Create(ctx, "2", "b", a.ID)
	c, _ := svc.Create(ctx, "3", "c", b.ID)

	err := svc.Reparent(ctx, a.ID, c.ID)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeCycle))

	// Tree unchanged after the rejected move.
	chain, err := svc.Ancestors(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, b.ID, chain[0].ID)

	// A legal move still works and is reflected in lookups.
	require.NoError(t, svc.Reparent(ctx, c.ID, a.ID))
	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ParentID)
}

func TestDelete_Referenced(t *testing.T) {
	refs := &fakeRefs{used: make(map[domain.AddressID]bool)}
	svc := newService(t, address.WithRefChecker(refs))
	ctx := context.Background()

	a, _ := svc.Create(ctx, "1", "a", 0)
	b, _ := svc.Create(ctx, "2", "b", a.ID)

	err := svc.Delete(ctx, a.ID)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeReferenced), "node with children")

	refs.used[b.ID] = true
	err = svc.Delete(ctx, b.ID)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeReferenced), "node referenced by persons")

	refs.used[b.ID] = false
	require.NoError(t, svc.Delete(ctx, b.ID))
	require.NoError(t, svc.Delete(ctx, a.ID))
}

func TestLoad_RebuildsHierarchy(t *testing.T) {
	store := address.NewInMemoryStore()
	svc, err := address.New(store)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	ctx := context.Background()

	a, _ := svc.Create(ctx, "1", "a", 0)
	_, err = svc.Create(ctx, "2", "b", a.ID)
	require.NoError(t, err)

	// A fresh service over the same store sees the same tree.
	svc2, err := address.New(store)
	require.NoError(t, err)
	require.NoError(t, svc2.Load(ctx))
	desc, err := svc2.Descendants(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, desc, 1)
}
