package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the mutating operation an event records. Remark templates in
// the excluded presentation layer are registered under these names; the core
// only supplies the name and the structured details needed to render them.
type Action string

const (
	ActionPersonRegistered Action = "person_registered"
	ActionPersonRetired    Action = "person_retired"
	ActionPersonDied       Action = "person_died"

	ActionStandardBound  Action = "standard_bound"
	ActionBindingClosed  Action = "binding_closed"
	ActionBankcardBound  Action = "bankcard_bound"
	ActionAddressCreated Action = "address_created"

	ActionNoteCreated  Action = "note_created"
	ActionNoteDisabled Action = "note_disabled"
	ActionNoteFinished Action = "note_finished"

	ActionEntryPosted    Action = "entry_posted"
	ActionEntriesRemend  Action = "entries_remend"
	ActionEntryForwarded Action = "entry_forwarded"
	ActionEntryAmended   Action = "entry_amended"
	ActionPeriodSettled  Action = "period_settled"
	ActionReportIngested Action = "report_ingested"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Operator  string
	Action    Action
	// Details carries the structured payload the remark template renders
	// from. Values are plain strings so every sink can serialize them.
	Details map[string]string
}
