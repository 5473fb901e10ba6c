package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	fill(&event)
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, operator string) ([]Event, error) {
	return p.store.ListByOperator(ctx, operator)
}

// ChannelPublisher hands events to a worker over a channel so mutating calls
// never block on the audit store.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	fill(&event)
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tee fans one event out to two publishers. The secondary is best-effort:
// its failure is reported but does not mask a primary success.
type Tee struct {
	Primary   Emitter
	Secondary Emitter
}

// Emitter is the narrow interface services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

func (t *Tee) Emit(ctx context.Context, event Event) error {
	err := t.Primary.Emit(ctx, event)
	if t.Secondary != nil {
		_ = t.Secondary.Emit(ctx, event)
	}
	return err
}

func fill(event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}
