package standard

import (
	"time"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
)

// Standard is a named pay level with its monthly amount.
type Standard struct {
	ID    domain.StandardID
	Name  string
	Money decimal.Decimal
}

// Assoc binds a person to a standard over a date range. Assocs are never
// deleted; closing one sets EndDate.
type Assoc struct {
	ID         domain.AssocID
	PersonID   domain.PersonID
	StandardID domain.StandardID
	StartDate  time.Time
	EndDate    *time.Time
}

// Effective reports whether the binding is in force at now: open-ended, or
// ending on or after now. The end date itself is inclusive. A row only
// becomes history once its end date has passed; a future start date does not
// defer it.
func (a Assoc) Effective(now time.Time) bool {
	return a.EndDate == nil || !a.EndDate.Before(now)
}
