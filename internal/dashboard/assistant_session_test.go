package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

func newAssistant(client *fakeClient) *AssistantSession {
	return NewAssistantSession("s1", "tok", "aizere", assistant.Context{
		Role:       "student",
		Profession: "aizere",
	}, client, nil, nil)
}

func TestAssistantSession_SeededGreeting(t *testing.T) {
	a := newAssistant(&fakeClient{})

	transcript := a.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, assistant.RoleAssistant, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "Hi aizere!")
}

func TestAssistantSession_SendSuccess(t *testing.T) {
	client := &fakeClient{reply: "Focus on Go concurrency patterns."}
	a := newAssistant(client)

	reply, degraded, err := a.Send(context.Background(), "  What should I learn next?  ")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "Focus on Go concurrency patterns.", reply.Content)

	// Greeting + user turn + assistant turn.
	transcript := a.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, assistant.RoleUser, transcript[1].Role)
	assert.Equal(t, "What should I learn next?", transcript[1].Content)
}

func TestAssistantSession_EmptyMessageRejected(t *testing.T) {
	a := newAssistant(&fakeClient{})

	_, _, err := a.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, shared.ErrEmptyMessage)
	assert.Len(t, a.Transcript(), 1)
}

func TestAssistantSession_OfflineFallback(t *testing.T) {
	client := &fakeClient{askErr: errors.New("backend down")}
	a := newAssistant(client)

	reply, degraded, err := a.Send(context.Background(), "Help me prep for interviews")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, assistant.OfflineReply, reply.Content)

	// The send still settles the transcript with exactly two new turns.
	assert.Len(t, a.Transcript(), 3)
}

func TestAssistantSession_RejectsConcurrentSend(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{reply: "answer", askGate: gate}
	a := newAssistant(client)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, err := a.Send(context.Background(), "first question")
		assert.NoError(t, err)
	}()

	require.Eventually(t, a.Busy, time.Second, time.Millisecond)

	_, _, err := a.Send(context.Background(), "second question")
	assert.ErrorIs(t, err, shared.ErrAssistantBusy)

	close(gate)
	wg.Wait()

	assert.False(t, a.Busy())
	// Only the first send reached the transcript: greeting + 2.
	assert.Len(t, a.Transcript(), 3)

	// The slot is free again.
	_, _, err = a.Send(context.Background(), "third question")
	assert.NoError(t, err)
	assert.Len(t, a.Transcript(), 5)
}

// panickyClient panics on the first remote call, then behaves normally.
type panickyClient struct {
	*fakeClient
	panics int
}

func (p *panickyClient) Ask(ctx context.Context, token, message string, actx assistant.Context) (string, error) {
	if p.panics > 0 {
		p.panics--
		panic("assistant backend exploded")
	}
	return p.fakeClient.Ask(ctx, token, message, actx)
}

func TestAssistantSession_SlotFreesAfterClientPanic(t *testing.T) {
	client := &panickyClient{fakeClient: &fakeClient{reply: "recovered answer"}, panics: 1}
	a := NewAssistantSession("s1", "tok", "aizere", assistant.Context{}, client, nil, nil)

	assert.Panics(t, func() {
		_, _, _ = a.Send(context.Background(), "first question")
	})

	// The in-flight slot must not stay occupied after the panic.
	assert.False(t, a.Busy())

	reply, degraded, err := a.Send(context.Background(), "second question")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "recovered answer", reply.Content)
}
