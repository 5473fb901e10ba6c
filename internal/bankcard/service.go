package bankcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"paybook/internal/audit"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/requestcontext"
)

// LedgerRefChecker reports whether ledger rows reference a card. The ledger
// store implements it.
type LedgerRefChecker interface {
	BankcardInUse(ctx context.Context, id domain.BankcardID) (bool, error)
}

// PersonDirectory answers whether a person exists. The person service
// implements it.
type PersonDirectory interface {
	Exists(ctx context.Context, id domain.PersonID) (bool, error)
}

// Service manages bank cards.
type Service struct {
	store   Store
	ledger  LedgerRefChecker
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

func WithLedgerRefChecker(ledger LedgerRefChecker) Option {
	return func(s *Service) { s.ledger = ledger }
}

func WithPersonDirectory(persons PersonDirectory) Option {
	return func(s *Service) { s.persons = persons }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("bankcard store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers an unbound card.
func (s *Service) Create(ctx context.Context, no, name string) (*Bankcard, error) {
	if !ValidNo(no) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "card number %q is malformed", no)
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}

	c := &Bankcard{
		No:         no,
		Name:       name,
		CreateBy:   requestcontext.Operator(ctx),
		CreateTime: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "card number %q already exists", no)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create bankcard")
	}
	return c, nil
}

// BindOwner attaches a card to a person.
func (s *Service) BindOwner(ctx context.Context, id domain.BankcardID, owner domain.PersonID) (*Bankcard, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Binded() {
		return nil, dErrors.Newf(dErrors.CodeStatus, "card %q is already bound to person %d", c.No, c.OwnerID)
	}
	if s.persons != nil {
		ok, err := s.persons.Exists(ctx, owner)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check person")
		}
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "person %d not found", owner)
		}
	}

	if err := s.store.UpdateOwner(ctx, id, owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "bind bankcard")
	}
	c.OwnerID = owner

	s.emit(ctx, audit.ActionBankcardBound, map[string]string{
		"bankcard": c.No,
		"person":   owner.String(),
	})
	return c, nil
}

// Delete removes a card. Cards referenced by ledger entries are kept.
func (s *Service) Delete(ctx context.Context, id domain.BankcardID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if s.ledger != nil {
		used, err := s.ledger.BankcardInUse(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check bankcard references")
		}
		if used {
			return dErrors.Newf(dErrors.CodeReferenced, "bankcard %d has ledger entries", id)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete bankcard")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id domain.BankcardID) (*Bankcard, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "bankcard %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get bankcard")
	}
	return c, nil
}

func (s *Service) GetByNo(ctx context.Context, no string) (*Bankcard, error) {
	c, err := s.store.GetByNo(ctx, no)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "bankcard %q not found", no)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get bankcard by number")
	}
	return c, nil
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
