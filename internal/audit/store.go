package audit

import "context"

// Store persists operation-log events. The log is append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOperator(ctx context.Context, operator string) ([]Event, error)
}
