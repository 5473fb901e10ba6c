package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"paybook/internal/report"
	"paybook/pkg/domain"
	"paybook/pkg/requestcontext"
)

// runIngest reads a bank report file and posts its lines to the ledger.
// Returns the number of rejected lines.
func runIngest(ctx context.Context, svc *report.Service, log *slog.Logger, path, periodArg, operator string) (int, error) {
	var period domain.Period
	if periodArg != "" {
		var err error
		period, err = domain.ParsePeriod(periodArg)
		if err != nil {
			return 0, fmt.Errorf("parse period %q: %w", periodArg, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// The line layout requires its trailing whitespace, which the
		// scanner strips along with the terminator.
		lines = append(lines, scanner.Text()+"\n")
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read report file: %w", err)
	}

	ctx = requestcontext.WithOperator(ctx, operator)
	results := svc.IngestAll(ctx, lines, period)

	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			log.Warn("report line rejected", "line", i+1, "error", r.Err)
		}
	}
	log.Info("report ingested", "file", path, "lines", len(results), "failed", failed)
	return failed, nil
}
