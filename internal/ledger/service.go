package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"paybook/internal/audit"
	"paybook/internal/bankcard"
	"paybook/internal/payitem"
	"paybook/internal/platform/metrics"
	"paybook/pkg/domain"
	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
	"paybook/pkg/requestcontext"
)

// CardDirectory resolves bank cards. The bankcard service implements it.
type CardDirectory interface {
	Get(ctx context.Context, id domain.BankcardID) (*bankcard.Bankcard, error)
	GetByNo(ctx context.Context, no string) (*bankcard.Bankcard, error)
}

var (
	minAmendAmount = decimal.NewFromFloat(0.01)
	maxAmendAmount = decimal.NewFromInt(1000000)
)

// Service is the accounting engine. Every multi-row operation runs through
// the TxRunner so partial postings can never land.
type Service struct {
	store   Store
	tx      TxRunner
	items   *payitem.Registry
	cards   CardDirectory
	cache   *PeriodCache
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

func WithCardDirectory(cards CardDirectory) Option {
	return func(s *Service) { s.cards = cards }
}

func WithPeriodCache(cache *PeriodCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, tx TxRunner, items *payitem.Registry, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("ledger tx runner is required")
	}
	if items == nil {
		return nil, fmt.Errorf("pay item registry is required")
	}
	s := &Service{store: store, tx: tx, items: items}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PostInput describes a single posting. A zero Period means the current
// period.
type PostInput struct {
	PersonID   domain.PersonID
	BankcardID domain.BankcardID
	ItemID     domain.ItemID
	Money      decimal.Decimal
	Period     domain.Period
}

// Post appends one row to the ledger.
func (s *Service) Post(ctx context.Context, in PostInput) (*Entry, error) {
	if in.PersonID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "person is required")
	}
	if in.ItemID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "pay item is required")
	}
	if err := checkMoney(in.Money); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	period := in.Period
	if period.IsZero() {
		period = domain.PeriodOf(now)
	}

	e := &Entry{
		PersonID:   in.PersonID,
		BankcardID: in.BankcardID,
		ItemID:     in.ItemID,
		Money:      in.Money,
		Period:     period,
		CreateDate: now,
		CreateBy:   requestcontext.Operator(ctx),
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "post ledger entry")
	}
	s.finish(ctx, audit.ActionEntryPosted, []*Entry{e})
	return e, nil
}

// Remend moves money between items for a person: one negating row on
// fromItem, one restating row on toItem, in a single transaction.
func (s *Service) Remend(ctx context.Context, person domain.PersonID, card domain.BankcardID, fromItem, toItem domain.ItemID, money decimal.Decimal, period domain.Period) ([]*Entry, error) {
	if person.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "person is required")
	}
	if fromItem.IsZero() || toItem.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "both pay items are required")
	}
	if fromItem == toItem {
		return nil, dErrors.New(dErrors.CodeValidation, "source and target items are the same")
	}
	if err := checkMoney(money); err != nil {
		return nil, err
	}
	if !money.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "remend amount must be positive")
	}

	now := requestcontext.Now(ctx)
	if period.IsZero() {
		period = domain.PeriodOf(now)
	}
	operator := requestcontext.Operator(ctx)

	entries := []*Entry{
		{PersonID: person, BankcardID: card, ItemID: fromItem, Money: money.Neg(), Period: period, CreateDate: now, CreateBy: operator},
		{PersonID: person, BankcardID: card, ItemID: toItem, Money: money, Period: period, CreateDate: now, CreateBy: operator},
	}
	err := s.tx.RunInTx(ctx, func(tx Store) error {
		return tx.CreateAll(ctx, entries)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "remend")
	}
	s.finish(ctx, audit.ActionEntriesRemend, entries)
	return entries, nil
}

// Forward re-routes a posted row onto a new item and card: a reversal on
// the source's item/card plus a restatement on the new ones, both in the
// source row's period.
func (s *Service) Forward(ctx context.Context, source domain.EntryID, newItem domain.ItemID, newCard domain.BankcardID) ([]*Entry, error) {
	src, err := s.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	if newItem.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "target pay item is required")
	}
	if newItem == src.ItemID && newCard == src.BankcardID {
		return nil, dErrors.New(dErrors.CodeValidation, "forward target equals the source")
	}

	now := requestcontext.Now(ctx)
	operator := requestcontext.Operator(ctx)
	entries := []*Entry{
		{PersonID: src.PersonID, BankcardID: src.BankcardID, ItemID: src.ItemID, Money: src.Money.Neg(), Period: src.Period, CreateDate: now, CreateBy: operator},
		{PersonID: src.PersonID, BankcardID: newCard, ItemID: newItem, Money: src.Money, Period: src.Period, CreateDate: now, CreateBy: operator},
	}
	err = s.tx.RunInTx(ctx, func(tx Store) error {
		return tx.CreateAll(ctx, entries)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "forward")
	}
	s.finish(ctx, audit.ActionEntryForwarded, entries)
	return entries, nil
}

// Amend corrects a failed disbursement onto a new card. The source row must
// be a sys_should_pay obligation on a bound card; the amendment posts four
// rows in one transaction, all in the source period: the amended amount
// moves through sys_amend onto the new card, and the original obligation is
// restated as payable.
func (s *Service) Amend(ctx context.Context, source domain.EntryID, newCardNo string, amount decimal.Decimal) ([]*Entry, error) {
	if s.cards == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "card directory is not wired")
	}
	src, err := s.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	if src.ItemID != s.items.SysShouldPay.ID {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"entry %d is not a %s obligation", source, payitem.NameSysShouldPay)
	}
	if err := checkMoney(amount); err != nil {
		return nil, err
	}
	if amount.LessThan(minAmendAmount) || amount.GreaterThan(maxAmendAmount) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "amend amount %s is out of range", amount)
	}
	if src.BankcardID.IsZero() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "entry %d has no bank card", source)
	}
	srcCard, err := s.cards.Get(ctx, src.BankcardID)
	if err != nil {
		return nil, err
	}
	if !srcCard.Binded() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "card %q is not bound to a person", srcCard.No)
	}
	newCard, err := s.cards.GetByNo(ctx, newCardNo)
	if err != nil {
		return nil, err
	}
	if !newCard.Binded() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "card %q is not bound to a person", newCard.No)
	}

	now := requestcontext.Now(ctx)
	operator := requestcontext.Operator(ctx)
	entries := []*Entry{
		{PersonID: newCard.OwnerID, BankcardID: newCard.ID, ItemID: s.items.SysAmend.ID, Money: amount.Neg(), Period: src.Period, CreateDate: now, CreateBy: operator},
		{PersonID: newCard.OwnerID, BankcardID: newCard.ID, ItemID: s.items.BankShouldPay.ID, Money: amount, Period: src.Period, CreateDate: now, CreateBy: operator},
		{PersonID: src.PersonID, BankcardID: srcCard.ID, ItemID: s.items.SysShouldPay.ID, Money: src.Money.Neg(), Period: src.Period, CreateDate: now, CreateBy: operator},
		{PersonID: src.PersonID, BankcardID: srcCard.ID, ItemID: s.items.BankShouldPay.ID, Money: src.Money, Period: src.Period, CreateDate: now, CreateBy: operator},
	}
	err = s.tx.RunInTx(ctx, func(tx Store) error {
		return tx.CreateAll(ctx, entries)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "amend")
	}
	s.finish(ctx, audit.ActionEntryAmended, entries)
	return entries, nil
}

// Failure is one failed disbursement from the bank's settlement report.
type Failure struct {
	CardNo string
	Money  decimal.Decimal
}

// SettleFailures books the bank's failed disbursements for a period. A
// period whose bank_should_pay and bank_failed totals already balance is
// considered settled and rejects a second run; the predicate is re-checked
// inside the posting transaction so two concurrent settlements cannot both
// land.
func (s *Service) SettleFailures(ctx context.Context, period domain.Period, fails []Failure) ([]*Entry, error) {
	if s.cards == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "card directory is not wired")
	}
	if period.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "period is required")
	}
	settled, err := s.IsPeriodSettled(ctx, period)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, dErrors.Newf(dErrors.CodeStatus, "period %s is already settled", period)
	}

	now := requestcontext.Now(ctx)
	operator := requestcontext.Operator(ctx)
	entries := make([]*Entry, 0, len(fails))
	for _, f := range fails {
		if err := checkMoney(f.Money); err != nil {
			return nil, err
		}
		if !f.Money.IsPositive() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "failure amount %s must be positive", f.Money)
		}
		card, err := s.cards.GetByNo(ctx, f.CardNo)
		if err != nil {
			return nil, err
		}
		if !card.Binded() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "card %q is not bound to a person", card.No)
		}
		entries = append(entries, &Entry{
			PersonID:   card.OwnerID,
			BankcardID: card.ID,
			ItemID:     s.items.BankFailed.ID,
			Money:      f.Money,
			Period:     period,
			CreateDate: now,
			CreateBy:   operator,
		})
	}

	err = s.tx.RunInTx(ctx, func(tx Store) error {
		settled, err := s.periodSettled(ctx, tx, period)
		if err != nil {
			return err
		}
		if settled {
			return dErrors.Newf(dErrors.CodeStatus, "period %s is already settled", period)
		}
		return tx.CreateAll(ctx, entries)
	})
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeStatus) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "settle failures")
	}
	s.finish(ctx, audit.ActionPeriodSettled, entries)
	return entries, nil
}

// PeriodTotal returns the signed sum of an item over a period, read through
// the cache when one is wired.
func (s *Service) PeriodTotal(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, error) {
	if total, ok, err := s.cache.Get(ctx, item, period); err == nil && ok {
		return total, nil
	} else if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "period total cache read failed", "error", err)
	}

	total, err := s.store.SumByItemPeriod(ctx, item, period)
	if err != nil {
		return decimal.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "sum period total")
	}
	if err := s.cache.Set(ctx, item, period, total); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "period total cache write failed", "error", err)
	}
	return total, nil
}

// IsPeriodSettled reports whether bank_should_pay and bank_failed balance
// for the period, within the settlement epsilon.
func (s *Service) IsPeriodSettled(ctx context.Context, period domain.Period) (bool, error) {
	return s.periodSettled(ctx, s.store, period)
}

func (s *Service) periodSettled(ctx context.Context, store Store, period domain.Period) (bool, error) {
	shouldPay, err := store.SumByItemPeriod(ctx, s.items.BankShouldPay.ID, period)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "sum bank_should_pay")
	}
	failed, err := store.SumByItemPeriod(ctx, s.items.BankFailed.ID, period)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "sum bank_failed")
	}
	return shouldPay.Sub(failed).Abs().LessThanOrEqual(settleEpsilon), nil
}

// Get returns one ledger entry.
func (s *Service) Get(ctx context.Context, id domain.EntryID) (*Entry, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "ledger entry %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get ledger entry")
	}
	return e, nil
}

// ListByPerson returns a person's ledger history.
func (s *Service) ListByPerson(ctx context.Context, person domain.PersonID) ([]*Entry, error) {
	entries, err := s.store.ListByPerson(ctx, person)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list ledger entries")
	}
	return entries, nil
}

// finish handles the bookkeeping shared by every posting operation: metrics,
// cache invalidation and the audit event.
func (s *Service) finish(ctx context.Context, action audit.Action, entries []*Entry) {
	s.metrics.AddEntriesPosted(len(entries))

	seen := make(map[ItemPeriod]struct{}, len(entries))
	pairs := make([]ItemPeriod, 0, len(entries))
	for _, e := range entries {
		ip := ItemPeriod{Item: e.ItemID, Period: e.Period}
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		pairs = append(pairs, ip)
	}
	if err := s.cache.Invalidate(ctx, pairs...); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "period total cache invalidation failed", "error", err)
	}

	if s.audit != nil {
		details := map[string]string{"rows": fmt.Sprintf("%d", len(entries))}
		if len(entries) > 0 {
			details["person"] = entries[0].PersonID.String()
			details["period"] = entries[0].Period.String()
		}
		ev := audit.Event{Operator: requestcontext.Operator(ctx), Action: action, Details: details}
		if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
		}
	}
}

// checkMoney enforces the two-decimal precision of ledger amounts.
func checkMoney(money decimal.Decimal) error {
	if money.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "amount must be non-zero")
	}
	if money.Exponent() < -2 {
		return dErrors.Newf(dErrors.CodeValidation, "amount %s has more than two decimal places", money)
	}
	return nil
}
