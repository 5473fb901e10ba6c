// Package domain holds typed identifiers and shared value types used across
// the registry. Rows are keyed by bigserial columns, so identifiers are int64
// wrappers rather than UUIDs; the distinct types keep a person id from being
// passed where a bankcard id is expected.
package domain

import "strconv"

type (
	// PersonID identifies a registered person.
	PersonID int64
	// AddressID identifies a node in the address taxonomy.
	AddressID int64
	// ItemID identifies a node in the pay item taxonomy.
	ItemID int64
	// BankcardID identifies a bank card.
	BankcardID int64
	// StandardID identifies a pay standard.
	StandardID int64
	// AssocID identifies a person/standard binding.
	AssocID int64
	// EntryID identifies a ledger entry.
	EntryID int64
	// NoteID identifies a notice on a person.
	NoteID int64
)

func (id PersonID) IsZero() bool   { return id == 0 }
func (id AddressID) IsZero() bool  { return id == 0 }
func (id ItemID) IsZero() bool     { return id == 0 }
func (id BankcardID) IsZero() bool { return id == 0 }
func (id StandardID) IsZero() bool { return id == 0 }
func (id AssocID) IsZero() bool    { return id == 0 }
func (id EntryID) IsZero() bool    { return id == 0 }
func (id NoteID) IsZero() bool     { return id == 0 }

func (id PersonID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id AddressID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id ItemID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id BankcardID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id StandardID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id AssocID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id EntryID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id NoteID) String() string     { return strconv.FormatInt(int64(id), 10) }
