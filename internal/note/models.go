// Package note manages dated notices attached to persons: payment remarks,
// suspension warnings, anything a clerk must see while the range is open.
package note

import (
	"time"

	"paybook/pkg/domain"
)

// Note is one notice on a person. EndDate is nil while the notice is open;
// Disabled withdraws it without touching the range.
type Note struct {
	ID         domain.NoteID
	PersonID   domain.PersonID
	Content    string
	StartDate  time.Time
	EndDate    *time.Time
	Disabled   bool
	CreateBy   string
	CreateTime time.Time
}

// Effective reports whether the notice should be shown at now: not
// withdrawn, started, and not yet past its end date. The end date itself is
// inclusive, like standard bindings.
func (n Note) Effective(now time.Time) bool {
	if n.Disabled || n.StartDate.After(now) {
		return false
	}
	return n.EndDate == nil || !n.EndDate.Before(now)
}
