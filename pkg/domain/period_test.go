package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/pkg/domain"
)

func TestPeriodOf_NormalizesToFirstDay(t *testing.T) {
	p := domain.PeriodOf(time.Date(2024, time.March, 17, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), p.FirstDay())
	assert.Equal(t, "2024-03", p.String())
}

func TestParsePeriod(t *testing.T) {
	p, err := domain.ParsePeriod("201503")
	require.NoError(t, err)
	assert.Equal(t, 2015, p.Year())
	assert.Equal(t, time.March, p.Month())

	_, err = domain.ParsePeriod("2015-03")
	assert.Error(t, err)
}

func TestNewPeriod_RollsOverflowingMonth(t *testing.T) {
	// Month 13 is produced by the retire-day rule for December birthdays.
	p := domain.NewPeriod(2010, time.December+1)
	assert.Equal(t, 2011, p.Year())
	assert.Equal(t, time.January, p.Month())
}

func TestPeriodNext(t *testing.T) {
	p := domain.NewPeriod(2024, time.December)
	assert.Equal(t, domain.NewPeriod(2025, time.January), p.Next())
}
