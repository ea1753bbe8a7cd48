package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// AssistantMetrics receives assistant outcomes. Optional.
type AssistantMetrics interface {
	RecordAssistantFallback()
	RecordAssistantLatency(duration time.Duration)
}

// AssistantSession is one session's conversation with the AI assistant.
//
// The conversation has a single in-flight slot: while one send awaits
// its reply, further sends are rejected with shared.ErrAssistantBusy
// rather than queued. Every accepted send settles the transcript with
// exactly two messages, the user's and either the remote reply or the
// deterministic offline reply.
type AssistantSession struct {
	sessionID string
	client    FeedClient
	token     string
	actx      assistant.Context
	events    shared.EventPublisher
	metrics   AssistantMetrics

	mu         sync.Mutex
	transcript []assistant.Message
	awaiting   bool
}

// NewAssistantSession creates a conversation seeded with the greeting
// for the learner's display name.
func NewAssistantSession(sessionID, token, displayName string, actx assistant.Context, client FeedClient, events shared.EventPublisher, metrics AssistantMetrics) *AssistantSession {
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &AssistantSession{
		sessionID: sessionID,
		client:    client,
		token:     token,
		actx:      actx,
		events:    events,
		metrics:   metrics,
		transcript: []assistant.Message{
			assistant.NewMessage(assistant.RoleAssistant, assistant.Greeting(displayName)),
		},
	}
}

// Send submits a user message and blocks until the reply settles. The
// returned message is the assistant's turn; degraded reports whether it
// is the offline reply rather than a remote answer.
func (a *AssistantSession) Send(ctx context.Context, text string) (reply assistant.Message, degraded bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return assistant.Message{}, false, shared.ErrEmptyMessage
	}

	a.mu.Lock()
	if a.awaiting {
		a.mu.Unlock()
		return assistant.Message{}, false, shared.ErrAssistantBusy
	}
	a.awaiting = true
	a.transcript = append(a.transcript, assistant.NewMessage(assistant.RoleUser, trimmed))
	a.mu.Unlock()

	// The slot must free even if the client panics; otherwise every
	// later send would be rejected as busy.
	defer func() {
		a.mu.Lock()
		a.awaiting = false
		a.mu.Unlock()
	}()

	a.events.Publish(shared.NewEvent(shared.EventAssistantAsked, a.sessionID, map[string]any{
		"snippet": assistant.SummarySnippet(trimmed),
	}))

	startedAt := time.Now()
	answer, askErr := a.client.Ask(ctx, a.token, trimmed, a.actx)
	if a.metrics != nil {
		a.metrics.RecordAssistantLatency(time.Since(startedAt))
	}

	if askErr != nil {
		answer = assistant.OfflineReply
		degraded = true

		a.events.Publish(shared.NewEvent(shared.EventAssistantOffline, a.sessionID, map[string]any{
			"snippet": assistant.SummarySnippet(trimmed),
		}))
		if a.metrics != nil {
			a.metrics.RecordAssistantFallback()
		}
	}

	reply = assistant.NewMessage(assistant.RoleAssistant, answer)

	a.mu.Lock()
	a.transcript = append(a.transcript, reply)
	a.mu.Unlock()

	return reply, degraded, nil
}

// Transcript returns a copy of the conversation, oldest first.
func (a *AssistantSession) Transcript() []assistant.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]assistant.Message, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Busy reports whether a send is currently awaiting its reply.
func (a *AssistantSession) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.awaiting
}
