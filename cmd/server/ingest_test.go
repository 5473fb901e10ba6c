package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/audit"
	"paybook/internal/person"
	"paybook/pkg/domain"
)

// A report file written with ordinary newline-terminated lines must ingest
// cleanly: the line layout requires trailing whitespace, and the scanner
// strips the terminator.
func TestRunIngest(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := memoryStores()
	svcs, err := buildServices(ctx, st, audit.NewPublisher(st.audit), nil, nil, log)
	require.NoError(t, err)

	addr, err := svcs.address.Create(ctx, "42", "hubei", 0)
	require.NoError(t, err)
	p, err := svcs.persons.Register(ctx, person.RegisterInput{
		IDCard:       "42272519510701001X",
		Name:         "wang",
		Birthday:     time.Date(1951, time.July, 1, 0, 0, 0, 0, time.UTC),
		AddressID:    addr.ID,
		PersonalWage: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	card, err := svcs.cards.Create(ctx, "6213360000000000000", "wang")
	require.NoError(t, err)
	_, err = svcs.cards.BindOwner(ctx, card.ID, p.ID)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.txt")
	content := "00000001|wang|42272519510701001X|1500.00|ok|6213360000000000000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	failed, err := runIngest(ctx, svcs.reports, log, path, "201203", "importer")
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	entries, err := svcs.ledger.ListByPerson(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, card.ID, entries[0].BankcardID)
	assert.Equal(t, domain.NewPeriod(2012, time.March), entries[0].Period)
	assert.True(t, entries[0].Money.Equal(decimal.RequireFromString("1500.00")))
	assert.Equal(t, "importer", entries[0].CreateBy)
}

func TestRunIngest_CountsRejectedLines(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := memoryStores()
	svcs, err := buildServices(ctx, st, audit.NewPublisher(st.audit), nil, nil, log)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.txt")
	content := "not a report line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	failed, err := runIngest(ctx, svcs.reports, log, path, "", "importer")
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}
