package report

import (
	"context"
	"fmt"
	"log/slog"

	"paybook/internal/audit"
	"paybook/internal/bankcard"
	"paybook/internal/ledger"
	"paybook/internal/payitem"
	"paybook/internal/person"
	"paybook/internal/platform/metrics"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/requestcontext"
)

// PersonLookup resolves persons by idcard. The person service implements it.
type PersonLookup interface {
	GetByIDCard(ctx context.Context, idcard string) (*person.Person, error)
}

// CardLookup resolves cards by number. The bankcard service implements it.
type CardLookup interface {
	GetByNo(ctx context.Context, no string) (*bankcard.Bankcard, error)
}

// Poster posts ledger entries. The ledger service implements it.
type Poster interface {
	Post(ctx context.Context, in ledger.PostInput) (*ledger.Entry, error)
}

// Service turns bank report lines into ledger postings.
type Service struct {
	persons PersonLookup
	cards   CardLookup
	poster  Poster
	items   *payitem.Registry
	logger  *slog.Logger
	audit   audit.Emitter
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(pub audit.Emitter) Option {
	return func(s *Service) { s.audit = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(persons PersonLookup, cards CardLookup, poster Poster, items *payitem.Registry, opts ...Option) (*Service, error) {
	if persons == nil || cards == nil || poster == nil {
		return nil, fmt.Errorf("person, card and poster dependencies are required")
	}
	if items == nil {
		return nil, fmt.Errorf("pay item registry is required")
	}
	s := &Service{persons: persons, cards: cards, poster: poster, items: items}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest posts one report line. An unknown idcard fails the line; an unknown
// or missing card number is tolerated and yields a person-only posting. A
// zero period means the current one.
func (s *Service) Ingest(ctx context.Context, line string, period domain.Period) (*ledger.Entry, error) {
	rec, err := ParseLine(line)
	if err != nil {
		return nil, err
	}

	p, err := s.persons.GetByIDCard(ctx, rec.IDCard)
	if err != nil {
		return nil, err
	}

	var cardID domain.BankcardID
	if rec.CardNo != "" {
		card, err := s.cards.GetByNo(ctx, rec.CardNo)
		switch {
		case err == nil:
			cardID = card.ID
		case dErrors.IsCode(err, dErrors.CodeNotFound):
			if s.logger != nil {
				s.logger.WarnContext(ctx, "report line card not found, posting person-only",
					"idcard", rec.IDCard, "card", rec.CardNo)
			}
		default:
			return nil, err
		}
	}

	entry, err := s.poster.Post(ctx, ledger.PostInput{
		PersonID:   p.ID,
		BankcardID: cardID,
		ItemID:     s.items.Sys.ID,
		Money:      rec.Money,
		Period:     period,
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Result is the outcome of one line in a batch.
type Result struct {
	Line  string
	Entry *ledger.Entry
	Err   error
}

// IngestAll processes a report stream line by line. Failed lines are
// reported, not retried; skip policy belongs to the caller.
func (s *Service) IngestAll(ctx context.Context, lines []string, period domain.Period) []Result {
	results := make([]Result, 0, len(lines))
	failed := 0
	for _, line := range lines {
		entry, err := s.Ingest(ctx, line, period)
		s.metrics.IncReportLine(err == nil)
		if err != nil {
			failed++
			if s.logger != nil {
				s.logger.WarnContext(ctx, "report line rejected", "error", err)
			}
		}
		results = append(results, Result{Line: line, Entry: entry, Err: err})
	}

	if s.audit != nil && len(lines) > 0 {
		ev := audit.Event{
			Operator: requestcontext.Operator(ctx),
			Action:   audit.ActionReportIngested,
			Details: map[string]string{
				"lines":  fmt.Sprintf("%d", len(lines)),
				"failed": fmt.Sprintf("%d", failed),
			},
		}
		if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", audit.ActionReportIngested, "error", err)
		}
	}
	return results
}
