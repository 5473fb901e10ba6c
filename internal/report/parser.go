package report

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	dErrors "paybook/pkg/domain-errors"
)

// lineRe is the bank report line layout: pipe-separated sequence, name,
// idcard, money, memo and card number, with trailing padding. The card
// number field may be empty.
var lineRe = regexp.MustCompile(`^(\d+)\|(.*?)\|(\d{17}[\dX])\|(\d+(?:\.\d+)?)\|(.*?)\|(\d*).*?\s+$`)

// Record is one parsed report line.
type Record struct {
	Seq    int64
	Name   string
	IDCard string
	Money  decimal.Decimal
	Memo   string
	CardNo string
}

// ParseLine parses a raw report line. Any shape mismatch is CodeFormat.
func ParseLine(line string) (*Record, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, dErrors.Newf(dErrors.CodeFormat, "report line %q does not match the expected layout", line)
	}
	seq, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeFormat, "report line sequence %q: %v", m[1], err)
	}
	money, err := decimal.NewFromString(m[4])
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeFormat, "report line amount %q: %v", m[4], err)
	}
	return &Record{
		Seq:    seq,
		Name:   m[2],
		IDCard: m[3],
		Money:  money,
		Memo:   m[5],
		CardNo: m[6],
	}, nil
}
