// Package payitem manages the pay item taxonomy the ledger classifies
// entries by, and the registry of well-known items posting logic depends on.
package payitem

import "paybook/pkg/domain"

// Direct classifies which way money flows for entries under an item.
type Direct int8

const (
	// DirectIn marks inbound flow (contributions, system obligations).
	DirectIn Direct = 1
	// DirectOut marks outbound flow (disbursements, failures).
	DirectOut Direct = -1
)

// Item is one node of the taxonomy. ParentID is zero for a root node.
type Item struct {
	ID       domain.ItemID
	Name     string // unique; posting logic looks items up by name
	Direct   Direct
	ParentID domain.ItemID
}

// Well-known item names. Lookup by name is a hard dependency for posting
// logic; a missing seed item is a fatal configuration error.
const (
	NamePay              = "pay"
	NameInternetBank     = "internet_bank"
	NameBank             = "bank"
	NameOughtPay         = "ought_pay"
	NameIncome           = "income"
	NameSys              = "sys"
	NameRemend           = "remend"
	NameInternetBankFail = "internet_bank_fail"
	NameBankFail         = "bank_fail"

	// Refined items actually posted against.
	NameSysShouldPay  = "sys_should_pay"
	NameSysAmend      = "sys_amend"
	NameBankShouldPay = "bank_should_pay"
	NameBankFailed    = "bank_failed"
)

// WellKnownNames lists every item the registry requires at startup.
var WellKnownNames = []string{
	NamePay, NameInternetBank, NameBank, NameOughtPay, NameIncome,
	NameSys, NameRemend, NameInternetBankFail, NameBankFail,
	NameSysShouldPay, NameSysAmend, NameBankShouldPay, NameBankFailed,
}
