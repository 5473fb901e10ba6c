package person_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/person"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/requestcontext"
)

func newService(t *testing.T) (*person.Service, *person.InMemoryStore) {
	t.Helper()
	store := person.NewInMemoryStore()
	svc, err := person.New(store)
	require.NoError(t, err)
	return svc, store
}

func registerInput() person.RegisterInput {
	return person.RegisterInput{
		IDCard:       "110101199001011234",
		Name:         "Wang Wei",
		Birthday:     time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		AddressID:    1,
		SecuriNo:     "SN-001",
		PersonalWage: decimal.NewFromInt(1500),
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithOperator(context.Background(), "clerk")
	ctx = requestcontext.WithTime(ctx, time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC))

	p, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.Equal(t, person.StatusRegistered, p.Status)
	assert.Equal(t, "clerk", p.CreateBy)
	assert.False(t, p.ID.IsZero())

	// Same idcard again.
	_, err = svc.Register(ctx, registerInput())
	assert.True(t, dErrors.IsCode(err, dErrors.CodeValidation))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		name   string
		mutate func(*person.RegisterInput)
		code   dErrors.Code
	}{
		{"short idcard", func(in *person.RegisterInput) { in.IDCard = "12345" }, dErrors.CodeValidation},
		{"bad check digit", func(in *person.RegisterInput) { in.IDCard = "11010119900101123Y" }, dErrors.CodeValidation},
		{"missing name", func(in *person.RegisterInput) { in.Name = "" }, dErrors.CodeValidation},
		{"negative wage", func(in *person.RegisterInput) { in.PersonalWage = decimal.NewFromInt(-1) }, dErrors.CodeValidation},
		{"wage above cap", func(in *person.RegisterInput) { in.PersonalWage = decimal.NewFromInt(10001) }, dErrors.CodeValidation},
		{"under sixteen", func(in *person.RegisterInput) {
			in.Birthday = time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC)
		}, dErrors.CodeAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.True(t, dErrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestRegister_IDCardWithXSuffix(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC))

	in := registerInput()
	in.IDCard = "42272519510701001X"
	in.Birthday = time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)
}

func TestRetire_BeforePolicyFloor(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC))

	p, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	// The computed retire day for a 1990 birthday is 2050-02-01; even the
	// policy floor of 2011-07-01 is later than the requested day.
	_, err = svc.Retire(ctx, p.ID, time.Date(2011, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, dErrors.IsCode(err, dErrors.CodeAge))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, person.StatusRegistered, got.Status)
	assert.Nil(t, got.RetireDay)
}

func TestRetire(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC))

	in := registerInput()
	in.IDCard = "42272519510701001X"
	in.Birthday = time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Register(ctx, in)
	require.NoError(t, err)

	// Standard retire day: 1951+60 = 2011, month after July = 2011-08-01.
	_, err = svc.Retire(ctx, p.ID, time.Date(2011, time.July, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, dErrors.IsCode(err, dErrors.CodeAge))

	requested := time.Date(2011, time.September, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.Retire(ctx, p.ID, requested)
	require.NoError(t, err)
	assert.Equal(t, person.StatusNormalRetire, got.Status)
	require.NotNil(t, got.RetireDay)
	assert.True(t, got.RetireDay.Equal(requested))

	// Retiring twice is a status error.
	_, err = svc.Retire(ctx, p.ID, requested.AddDate(1, 0, 0))
	assert.True(t, dErrors.IsCode(err, dErrors.CodeStatus))
}

func TestDie(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC))

	in := registerInput()
	in.IDCard = "42272519510701001X"
	in.Birthday = time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Register(ctx, in)
	require.NoError(t, err)

	deadDay := time.Date(2012, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("working person dies unretired", func(t *testing.T) {
		got, err := svc.Die(ctx, p.ID, deadDay)
		require.NoError(t, err)
		assert.Equal(t, person.StatusDeadUnretired, got.Status)
		require.NotNil(t, got.DeadDay)
	})

	t.Run("death is terminal", func(t *testing.T) {
		_, err := svc.Die(ctx, p.ID, deadDay)
		assert.True(t, dErrors.IsCode(err, dErrors.CodeStatus))
		_, err = svc.Retire(ctx, p.ID, deadDay)
		assert.True(t, dErrors.IsCode(err, dErrors.CodeStatus))
	})
}

func TestDie_RetiredPerson(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC))

	in := registerInput()
	in.IDCard = "42272519510701001X"
	in.Birthday = time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Register(ctx, in)
	require.NoError(t, err)
	_, err = svc.Retire(ctx, p.ID, time.Date(2011, time.September, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	got, err := svc.Die(ctx, p.ID, time.Date(2012, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, person.StatusDeadRetire, got.Status)
}

func TestStandardRetireDay(t *testing.T) {
	cases := []struct {
		name     string
		birthday time.Time
		want     time.Time
	}{
		{
			"mid-year birthday",
			time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2011, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"december rolls into next year",
			time.Date(1955, time.December, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"floored at policy date",
			time.Date(1930, time.March, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2011, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, person.StandardRetireDay(tc.birthday).Equal(tc.want))
		})
	}
}
