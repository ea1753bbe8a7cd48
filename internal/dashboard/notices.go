package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// Notice is a transient, non-fatal message for the session's user,
// matching the web dashboard's toasts.
type Notice struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Destructive bool      `json:"destructive,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NoticeSurface buffers one session's notices until the next dashboard
// read drains them.
type NoticeSurface struct {
	sessionID string

	mu      sync.Mutex
	pending []Notice
}

// NewNoticeSurface creates an empty surface for a session.
func NewNoticeSurface(sessionID string) *NoticeSurface {
	return &NoticeSurface{sessionID: sessionID}
}

// Attach subscribes the surface to the bus.
func (n *NoticeSurface) Attach(bus shared.EventBus) error {
	return bus.SubscribeAll(n.Handle)
}

// Handle maps one event to its notice, if it has one.
func (n *NoticeSurface) Handle(event shared.Event) error {
	if event.SessionID() != n.sessionID {
		return nil
	}

	payload := event.Payload()

	switch event.EventType() {
	case shared.EventSnapshotRefreshed:
		n.push(Notice{
			Title: "Opportunities Updated!",
			Description: fmt.Sprintf("Found %v jobs, %v internships, and %v hackathons",
				payload["jobs"], payload["internships"], payload["hackathons"]),
		})

	case shared.EventRefreshFailed:
		if payload["feed"] == "live_opportunities" {
			n.push(Notice{
				Title:       "Update Failed",
				Description: "Could not fetch latest opportunities. Using cached data.",
				Destructive: true,
			})
		}

	case shared.EventAssistantOffline:
		n.push(Notice{
			Title:       "Using Offline Mode",
			Description: "AI assistant is running in offline mode. Full features available online.",
		})

	case shared.EventJobApplied:
		n.push(Notice{
			Title:       "Application Submitted!",
			Description: fmt.Sprintf("Applied to %v at %v", payload["title"], payload["company"]),
		})

	case shared.EventSessionEnded:
		n.push(Notice{
			Title:       "Logged out successfully",
			Description: "You have been logged out of your account.",
		})
	}

	return nil
}

func (n *NoticeSurface) push(notice Notice) {
	notice.Timestamp = time.Now()

	n.mu.Lock()
	n.pending = append(n.pending, notice)
	n.mu.Unlock()
}

// Drain returns all pending notices, oldest first, and clears the buffer.
func (n *NoticeSurface) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.pending
	n.pending = nil
	return out
}

// Pending returns the number of buffered notices.
func (n *NoticeSurface) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}
