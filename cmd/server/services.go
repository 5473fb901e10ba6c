package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"paybook/internal/address"
	"paybook/internal/audit"
	"paybook/internal/bankcard"
	"paybook/internal/ledger"
	"paybook/internal/note"
	"paybook/internal/payitem"
	"paybook/internal/person"
	"paybook/internal/platform/metrics"
	"paybook/internal/report"
	"paybook/internal/standard"
)

// stores groups one backend's store set.
type stores struct {
	address address.Store
	items   payitem.Store
	persons person.Store
	stds    standard.Store
	cards   bankcard.Store
	notes   note.Store
	ledger  ledger.Store
	tx      ledger.TxRunner
	audit   audit.Store
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		address: address.NewPostgres(db),
		items:   payitem.NewPostgres(db),
		persons: person.NewPostgres(db),
		stds:    standard.NewPostgres(db),
		cards:   bankcard.NewPostgres(db),
		notes:   note.NewPostgres(db),
		ledger:  ledger.NewPostgres(db),
		tx:      newLedgerPostgresTx(db),
		audit:   audit.NewPostgres(db),
	}
}

func memoryStores() *stores {
	memLedger := ledger.NewInMemoryStore()
	return &stores{
		address: address.NewInMemoryStore(),
		items:   payitem.NewInMemoryStore(),
		persons: person.NewInMemoryStore(),
		stds:    standard.NewInMemoryStore(),
		cards:   bankcard.NewInMemoryStore(),
		notes:   note.NewInMemoryStore(),
		ledger:  memLedger,
		tx:      memLedger,
		audit:   audit.NewInMemoryStore(),
	}
}

// services is the wired domain layer.
type services struct {
	address *address.Service
	items   *payitem.Service
	persons *person.Service
	stds    *standard.Service
	cards   *bankcard.Service
	notes   *note.Service
	ledger  *ledger.Service
	reports *report.Service
}

// buildServices seeds the pay item taxonomy and wires every domain service
// with its cross-package reference checks.
func buildServices(ctx context.Context, st *stores, publisher audit.Emitter, cache *ledger.PeriodCache, m *metrics.Metrics, log *slog.Logger) (*services, error) {
	if err := payitem.Seed(ctx, st.items); err != nil {
		return nil, fmt.Errorf("seed pay items: %w", err)
	}
	registry, err := payitem.NewRegistry(ctx, st.items)
	if err != nil {
		return nil, fmt.Errorf("load pay item registry: %w", err)
	}

	addressSvc, err := address.New(st.address,
		address.WithLogger(log),
		address.WithAuditPublisher(publisher),
		address.WithRefChecker(st.persons),
	)
	if err != nil {
		return nil, err
	}
	if err := addressSvc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load address tree: %w", err)
	}

	itemSvc, err := payitem.NewService(st.items, st.ledger)
	if err != nil {
		return nil, err
	}
	if err := itemSvc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load pay item tree: %w", err)
	}

	personSvc, err := person.New(st.persons,
		person.WithLogger(log),
		person.WithAuditPublisher(publisher),
		person.WithAddressDirectory(addressSvc),
		person.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	stdSvc, err := standard.New(st.stds,
		standard.WithLogger(log),
		standard.WithAuditPublisher(publisher),
		standard.WithPersonDirectory(personSvc),
	)
	if err != nil {
		return nil, err
	}

	noteSvc, err := note.New(st.notes,
		note.WithLogger(log),
		note.WithAuditPublisher(publisher),
		note.WithPersonDirectory(personSvc),
	)
	if err != nil {
		return nil, err
	}

	cardSvc, err := bankcard.New(st.cards,
		bankcard.WithLogger(log),
		bankcard.WithAuditPublisher(publisher),
		bankcard.WithLedgerRefChecker(st.ledger),
		bankcard.WithPersonDirectory(personSvc),
	)
	if err != nil {
		return nil, err
	}

	ledgerSvc, err := ledger.New(st.ledger, st.tx, registry,
		ledger.WithLogger(log),
		ledger.WithAuditPublisher(publisher),
		ledger.WithCardDirectory(cardSvc),
		ledger.WithPeriodCache(cache),
		ledger.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	reportSvc, err := report.New(personSvc, cardSvc, ledgerSvc, registry,
		report.WithLogger(log),
		report.WithAuditPublisher(publisher),
		report.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	return &services{
		address: addressSvc,
		items:   itemSvc,
		persons: personSvc,
		stds:    stdSvc,
		cards:   cardSvc,
		notes:   noteSvc,
		ledger:  ledgerSvc,
		reports: reportSvc,
	}, nil
}
