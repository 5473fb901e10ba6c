package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
)

// Entry is one ledger row. Rows are append-only: corrections post new
// offsetting rows, never edit Money in place.
type Entry struct {
	ID         domain.EntryID
	PersonID   domain.PersonID
	BankcardID domain.BankcardID // zero for person-only obligations
	ItemID     domain.ItemID
	Money      decimal.Decimal
	Period     domain.Period
	CreateDate time.Time
	CreateBy   string
}

// settleEpsilon bounds the acceptable residual when comparing period totals.
var settleEpsilon = decimal.NewFromFloat(0.001)
