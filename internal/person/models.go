package person

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
)

// Status is the closed lifecycle enumeration. Transitions happen only
// through the service; nothing else writes Status, RetireDay or DeadDay.
type Status string

const (
	StatusRegistered       Status = "registered"
	StatusNormal           Status = "normal"
	StatusDeadUnretired    Status = "dead-unretired"
	StatusAbortedUnretired Status = "aborted-unretired"
	StatusNormalRetire     Status = "normal-retire"
	StatusDeadRetire       Status = "dead-retire"
	StatusSuspendRetire    Status = "suspend-retire"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusNormal, StatusDeadUnretired,
		StatusAbortedUnretired, StatusNormalRetire, StatusDeadRetire,
		StatusSuspendRetire:
		return true
	}
	return false
}

// CanRetire reports whether retirement is permitted from s.
func (s Status) CanRetire() bool {
	return s == StatusRegistered || s == StatusNormal
}

// dieTarget returns the state death moves s into, if death is permitted.
func (s Status) dieTarget() (Status, bool) {
	switch s {
	case StatusRegistered, StatusNormal:
		return StatusDeadUnretired, true
	case StatusNormalRetire, StatusSuspendRetire:
		return StatusDeadRetire, true
	}
	return "", false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDeadUnretired || s == StatusDeadRetire || s == StatusAbortedUnretired
}

// Person is the registry record. PersonalWage is a monthly amount in yuan.
type Person struct {
	ID            domain.PersonID
	IDCard        string
	Name          string
	Birthday      time.Time
	AddressID     domain.AddressID
	AddressDetail string
	SecuriNo      string
	PersonalWage  decimal.Decimal
	Status        Status
	RetireDay     *time.Time
	DeadDay       *time.Time
	CreateBy      string
	CreateTime    time.Time
	Version       int64
}

const minEngageAge = 16

// policyImplementDate floors every computed retire day; nobody retires under
// this scheme before the scheme existed.
var policyImplementDate = time.Date(2011, time.July, 1, 0, 0, 0, 0, time.UTC)

var idcardPattern = regexp.MustCompile(`^\d{17}[\dX]$`)

var maxWage = decimal.NewFromInt(10000)

// StandardRetireDay is the first day of the month after the 60th-birthday
// month, floored at the policy implementation date. A December birthday
// rolls into January of the next year via date normalization.
func StandardRetireDay(birthday time.Time) time.Time {
	day := time.Date(birthday.Year()+60, birthday.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	if day.Before(policyImplementDate) {
		return policyImplementDate
	}
	return day
}
