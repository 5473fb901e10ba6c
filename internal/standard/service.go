package standard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paybook/internal/audit"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/requestcontext"
)

// PersonDirectory answers whether a person exists. The person service
// implements it.
type PersonDirectory interface {
	Exists(ctx context.Context, id domain.PersonID) (bool, error)
}

// Service manages pay standards and their bindings to persons.
type Service struct {
	store   Store
	persons PersonDirectory
	logger  *slog.Logger
	audit   audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(pub audit.Emitter) Option {
	return func(s *Service) { s.audit = pub }
}

func WithPersonDirectory(persons PersonDirectory) Option {
	return func(s *Service) { s.persons = persons }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("standard store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers a new pay standard.
func (s *Service) Create(ctx context.Context, name string, money decimal.Decimal) (*Standard, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if money.IsNegative() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "standard amount %s is negative", money)
	}

	st := &Standard{Name: name, Money: money}
	if err := s.store.CreateStandard(ctx, st); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "standard name %q already used", name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create standard")
	}
	return st, nil
}

// Get returns a standard by id.
func (s *Service) Get(ctx context.Context, id domain.StandardID) (*Standard, error) {
	st, err := s.store.GetStandard(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "standard %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get standard")
	}
	return st, nil
}

// Bind opens a binding between person and standard starting at start. A nil
// end leaves the binding open-ended; a non-nil end records a pre-closed
// (historical) binding in one call. A pair that already has an effective
// binding at the current time is rejected; history rows do not block a
// rebind.
func (s *Service) Bind(ctx context.Context, personID domain.PersonID, standardID domain.StandardID, start time.Time, end *time.Time) (*Assoc, error) {
	if end != nil && end.Before(start) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if _, err := s.Get(ctx, standardID); err != nil {
		return nil, err
	}
	if s.persons != nil {
		ok, err := s.persons.Exists(ctx, personID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check person")
		}
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "person %d not found", personID)
		}
	}

	existing, err := s.store.ListAssocsByPair(ctx, personID, standardID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list bindings")
	}
	now := requestcontext.Now(ctx)
	for _, a := range existing {
		if a.Effective(now) {
			return nil, dErrors.Newf(dErrors.CodeDuplicateBinding,
				"person %d already has an effective binding to standard %d", personID, standardID)
		}
	}

	a := &Assoc{PersonID: personID, StandardID: standardID, StartDate: start, EndDate: end}
	if err := s.store.CreateAssoc(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create binding")
	}

	details := map[string]string{
		"person":   personID.String(),
		"standard": standardID.String(),
		"start":    start.Format("2006-01-02"),
	}
	if end != nil {
		details["end"] = end.Format("2006-01-02")
	}
	s.emit(ctx, audit.ActionStandardBound, details)
	return a, nil
}

// Close ends a binding at end. The row is kept as history.
func (s *Service) Close(ctx context.Context, id domain.AssocID, end time.Time) (*Assoc, error) {
	a, err := s.store.GetAssoc(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "binding %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get binding")
	}
	if a.EndDate != nil {
		return nil, dErrors.Newf(dErrors.CodeStatus, "binding %d is already closed", id)
	}
	if end.Before(a.StartDate) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"end date %s precedes start date %s",
			end.Format("2006-01-02"), a.StartDate.Format("2006-01-02"))
	}

	a.EndDate = &end
	if err := s.store.UpdateAssoc(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "close binding")
	}

	s.emit(ctx, audit.ActionBindingClosed, map[string]string{
		"binding": a.ID.String(),
		"end":     end.Format("2006-01-02"),
	})
	return a, nil
}

// EffectiveStandards returns the standards bound to a person at now.
func (s *Service) EffectiveStandards(ctx context.Context, personID domain.PersonID) ([]*Standard, error) {
	assocs, err := s.store.ListAssocsByPerson(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list bindings")
	}
	now := requestcontext.Now(ctx)
	var out []*Standard
	for _, a := range assocs {
		if !a.Effective(now) {
			continue
		}
		st, err := s.Get(ctx, a.StandardID)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, details map[string]string) {
	if s.audit == nil {
		return
	}
	ev := audit.Event{Operator: requestcontext.Operator(ctx), Action: action, Details: details}
	if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
