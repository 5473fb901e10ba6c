package note

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

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

// Service manages notices on persons.
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
		return nil, fmt.Errorf("note store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create attaches a notice to a person. A nil end leaves the notice open.
func (s *Service) Create(ctx context.Context, personID domain.PersonID, content string, start time.Time, end *time.Time) (*Note, error) {
	if content == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "content is required")
	}
	if end != nil && end.Before(start) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
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

	n := &Note{
		PersonID:   personID,
		Content:    content,
		StartDate:  start,
		EndDate:    end,
		CreateBy:   requestcontext.Operator(ctx),
		CreateTime: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create note")
	}

	s.emit(ctx, audit.ActionNoteCreated, map[string]string{
		"note":   n.ID.String(),
		"person": personID.String(),
	})
	return n, nil
}

// Disable withdraws a notice without touching its date range.
func (s *Service) Disable(ctx context.Context, id domain.NoteID) (*Note, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Disabled {
		return nil, dErrors.Newf(dErrors.CodeStatus, "note %d is already disabled", id)
	}

	n.Disabled = true
	if err := s.store.Update(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "disable note")
	}

	s.emit(ctx, audit.ActionNoteDisabled, map[string]string{"note": n.ID.String()})
	return n, nil
}

// Finish closes a notice's range at the current time.
func (s *Service) Finish(ctx context.Context, id domain.NoteID) (*Note, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.EndDate != nil {
		return nil, dErrors.Newf(dErrors.CodeStatus, "note %d is already finished", id)
	}

	end := requestcontext.Now(ctx)
	n.EndDate = &end
	if err := s.store.Update(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "finish note")
	}

	s.emit(ctx, audit.ActionNoteFinished, map[string]string{
		"note": n.ID.String(),
		"end":  end.Format("2006-01-02"),
	})
	return n, nil
}

// Get returns one notice.
func (s *Service) Get(ctx context.Context, id domain.NoteID) (*Note, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "note %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get note")
	}
	return n, nil
}

// EffectiveNotes returns the notices to show for a person at now.
func (s *Service) EffectiveNotes(ctx context.Context, personID domain.PersonID) ([]*Note, error) {
	all, err := s.store.ListByPerson(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notes")
	}
	now := requestcontext.Now(ctx)
	var out []*Note
	for _, n := range all {
		if n.Effective(now) {
			out = append(out, n)
		}
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
