package payitem

import (
	"context"
	"errors"

	dErrors "paybook/pkg/domain-errors"
	"paybook/pkg/platform/sentinel"
)

// Registry resolves the well-known items once at startup and hands the
// ledger direct references. A missing seed item surfaces here as a fatal
// configuration error instead of a runtime lookup surprise.
type Registry struct {
	byName map[string]*Item

	Sys           *Item
	SysShouldPay  *Item
	SysAmend      *Item
	BankShouldPay *Item
	BankFailed    *Item
}

// NewRegistry loads every well-known item from the store. Any absent name is
// CodeConfiguration; callers are expected to treat that as fatal.
func NewRegistry(ctx context.Context, store Store) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Item, len(WellKnownNames))}
	for _, name := range WellKnownNames {
		item, err := store.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Newf(dErrors.CodeConfiguration,
					"required pay item %q is missing", name)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load pay item registry")
		}
		r.byName[name] = item
	}

	r.Sys = r.byName[NameSys]
	r.SysShouldPay = r.byName[NameSysShouldPay]
	r.SysAmend = r.byName[NameSysAmend]
	r.BankShouldPay = r.byName[NameBankShouldPay]
	r.BankFailed = r.byName[NameBankFailed]
	return r, nil
}

// ByName returns a well-known item.
func (r *Registry) ByName(name string) (*Item, error) {
	item, ok := r.byName[name]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "pay item %q is not registered", name)
	}
	return item, nil
}
