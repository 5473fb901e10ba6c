package person

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paybook/internal/audit"
	"paybook/internal/platform/metrics"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/requestcontext"
)

// AddressDirectory answers whether an address exists. The address service
// implements it.
type AddressDirectory interface {
	Exists(ctx context.Context, id domain.AddressID) (bool, error)
}

// Service is the sole writer of Status, RetireDay and DeadDay. Every
// transition goes through the transition table in models.go and is guarded
// by the store's version check.
type Service struct {
	store   Store
	addrs   AddressDirectory
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

func WithAddressDirectory(addrs AddressDirectory) Option {
	return func(s *Service) { s.addrs = addrs }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("person store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInput carries the already-validated primitives from the form
// layer; the service re-checks the domain rules.
type RegisterInput struct {
	IDCard        string
	Name          string
	Birthday      time.Time
	AddressID     domain.AddressID
	AddressDetail string
	SecuriNo      string
	PersonalWage  decimal.Decimal
}

// Register creates a person in the Registered state.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Person, error) {
	if !idcardPattern.MatchString(in.IDCard) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "idcard %q is malformed", in.IDCard)
	}
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if in.PersonalWage.IsNegative() || in.PersonalWage.GreaterThan(maxWage) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "personal wage %s is out of range", in.PersonalWage)
	}

	now := requestcontext.Now(ctx)
	if in.Birthday.After(now.AddDate(-minEngageAge, 0, 0)) {
		return nil, dErrors.Newf(dErrors.CodeAge, "person must be at least %d years old", minEngageAge)
	}

	if s.addrs != nil {
		ok, err := s.addrs.Exists(ctx, in.AddressID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check address")
		}
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "address %d not found", in.AddressID)
		}
	}

	p := &Person{
		IDCard:        in.IDCard,
		Name:          in.Name,
		Birthday:      in.Birthday,
		AddressID:     in.AddressID,
		AddressDetail: in.AddressDetail,
		SecuriNo:      in.SecuriNo,
		PersonalWage:  in.PersonalWage,
		Status:        StatusRegistered,
		CreateBy:      requestcontext.Operator(ctx),
		CreateTime:    now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "idcard %q is already registered", in.IDCard)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create person")
	}

	s.metrics.IncPersonsRegistered()
	s.emit(ctx, audit.ActionPersonRegistered, map[string]string{
		"person": p.ID.String(),
		"idcard": p.IDCard,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "person registered", "person", p.ID, "idcard", p.IDCard)
	}
	return p, nil
}

// Retire moves a person to NormalRetire. The requested retire day must not
// precede the standard retire day computed from the birthday.
func (s *Service) Retire(ctx context.Context, id domain.PersonID, retireDay time.Time) (*Person, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanRetire() {
		return nil, dErrors.Newf(dErrors.CodeStatus, "person %d cannot retire from status %q", id, p.Status)
	}
	standard := StandardRetireDay(p.Birthday)
	if retireDay.Before(standard) {
		return nil, dErrors.Newf(dErrors.CodeAge,
			"retire day %s precedes standard retire day %s",
			retireDay.Format("2006-01-02"), standard.Format("2006-01-02"))
	}

	p.Status = StatusNormalRetire
	p.RetireDay = &retireDay
	if err := s.update(ctx, p); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.ActionPersonRetired, map[string]string{
		"person":     p.ID.String(),
		"retire_day": retireDay.Format("2006-01-02"),
	})
	return p, nil
}

// Die marks a person dead. Working states go to DeadUnretired, retired
// states to DeadRetire; terminal states reject.
func (s *Service) Die(ctx context.Context, id domain.PersonID, deadDay time.Time) (*Person, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	target, ok := p.Status.dieTarget()
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeStatus, "person %d cannot die from status %q", id, p.Status)
	}

	p.Status = target
	p.DeadDay = &deadDay
	if err := s.update(ctx, p); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.ActionPersonDied, map[string]string{
		"person":   p.ID.String(),
		"dead_day": deadDay.Format("2006-01-02"),
		"status":   string(target),
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id domain.PersonID) (*Person, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "person %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get person")
	}
	return p, nil
}

// Exists reports whether a person record is present.
func (s *Service) Exists(ctx context.Context, id domain.PersonID) (bool, error) {
	_, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check person")
	}
	return true, nil
}

func (s *Service) GetByIDCard(ctx context.Context, idcard string) (*Person, error) {
	p, err := s.store.GetByIDCard(ctx, idcard)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "person with idcard %q not found", idcard)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get person by idcard")
	}
	return p, nil
}

func (s *Service) update(ctx context.Context, p *Person) error {
	if err := s.store.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.Newf(dErrors.CodeConflict, "person %d was modified concurrently", p.ID)
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Newf(dErrors.CodeNotFound, "person %d not found", p.ID)
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "update person")
		}
	}
	return nil
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
