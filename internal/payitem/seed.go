package payitem

import (
	"context"
	"errors"
	"fmt"

	"paybook/pkg/platform/sentinel"
)

// seedSpec declares the default taxonomy. Children list their parent by name
// so the seed is order-dependent but self-contained.
type seedSpec struct {
	name   string
	direct Direct
	parent string
}

var defaultItems = []seedSpec{
	{name: NameIncome, direct: DirectIn},
	{name: NameOughtPay, direct: DirectIn},
	{name: NameSys, direct: DirectIn},
	{name: NameSysShouldPay, direct: DirectIn, parent: NameSys},
	{name: NameSysAmend, direct: DirectIn, parent: NameSys},
	{name: NamePay, direct: DirectOut},
	{name: NameRemend, direct: DirectOut},
	{name: NameBank, direct: DirectOut},
	{name: NameBankShouldPay, direct: DirectOut, parent: NameBank},
	{name: NameBankFail, direct: DirectOut, parent: NameBank},
	{name: NameBankFailed, direct: DirectOut, parent: NameBank},
	{name: NameInternetBank, direct: DirectOut},
	{name: NameInternetBankFail, direct: DirectOut, parent: NameInternetBank},
}

// Seed creates the default taxonomy. Existing items are left alone, so the
// seed can run on every start.
func Seed(ctx context.Context, store Store) error {
	for _, spec := range defaultItems {
		if _, err := store.GetByName(ctx, spec.name); err == nil {
			continue
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("seed pay items: %w", err)
		}

		item := &Item{Name: spec.name, Direct: spec.direct}
		if spec.parent != "" {
			parent, err := store.GetByName(ctx, spec.parent)
			if err != nil {
				return fmt.Errorf("seed pay items: parent %q: %w", spec.parent, err)
			}
			item.ParentID = parent.ID
		}
		if err := store.Create(ctx, item); err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return fmt.Errorf("seed pay item %q: %w", spec.name, err)
		}
	}
	return nil
}
