package bankcard

import (
	"regexp"
	"time"

	"paybook/pkg/domain"
)

// Bankcard routes disbursements to a person's account. OwnerID is zero
// until the card is bound.
type Bankcard struct {
	ID         domain.BankcardID
	No         string
	Name       string
	OwnerID    domain.PersonID
	CreateBy   string
	CreateTime time.Time
}

// Binded reports whether the card has an owner.
func (c Bankcard) Binded() bool { return !c.OwnerID.IsZero() }

// Card numbers are either 19 plain digits or the legacy passbook form
// dd-ddddddddddddddd.
var cardNoPattern = regexp.MustCompile(`^\d{19}$|^\d{2}-\d{15}$`)

// ValidNo reports whether no has an accepted card number shape.
func ValidNo(no string) bool { return cardNoPattern.MatchString(no) }
