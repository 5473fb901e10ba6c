package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/audit"
)

func TestPublisher_FillsIDAndTimestamp(t *testing.T) {
	store := audit.NewInMemoryStore()
	pub := audit.NewPublisher(store)
	ctx := context.Background()

	err := pub.Emit(ctx, audit.Event{
		Operator: "clerk-1",
		Action:   audit.ActionEntryPosted,
		Details:  map[string]string{"money": "500.00"},
	})
	require.NoError(t, err)

	events, err := pub.List(ctx, "clerk-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, audit.ActionEntryPosted, events[0].Action)
}

func TestWorker_DrainsInboxAndStopsOnCancel(t *testing.T) {
	store := audit.NewInMemoryStore()
	inbox := make(chan audit.Event, 8)
	pub := audit.NewChannelPublisher(inbox)
	worker := audit.NewWorker(store, inbox, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.NoError(t, pub.Emit(ctx, audit.Event{Operator: "clerk-2", Action: audit.ActionPersonRetired}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Operator: "clerk-2", Action: audit.ActionPersonDied}))

	assert.Eventually(t, func() bool {
		events, err := store.ListByOperator(context.Background(), "clerk-2")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
