package dashboard

import (
	"fmt"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/activity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// Activity tags mirror how the web dashboard renders each entry type.
// The core treats them as opaque.
var (
	tagLogin       = activity.Tag{Icon: "LogOut", Color: "text-blue-400"}
	tagLogout      = activity.Tag{Icon: "LogOut", Color: "text-gray-400"}
	tagCourseDone  = activity.Tag{Icon: "GraduationCap", Color: "text-green-400"}
	tagJobApplied  = activity.Tag{Icon: "Briefcase", Color: "text-blue-400"}
	tagAIAssistant = activity.Tag{Icon: "Bot", Color: "text-purple-400"}
)

// ActivityRecorder translates one session's domain events into activity
// log entries. It subscribes to the shared bus and ignores events from
// other sessions.
type ActivityRecorder struct {
	sessionID string
	log       *activity.Log
}

// NewActivityRecorder creates a recorder writing into the given log.
func NewActivityRecorder(sessionID string, log *activity.Log) *ActivityRecorder {
	return &ActivityRecorder{
		sessionID: sessionID,
		log:       log,
	}
}

// Attach subscribes the recorder to the bus.
func (r *ActivityRecorder) Attach(bus shared.EventBus) error {
	return bus.SubscribeAll(r.Handle)
}

// Handle maps one event to its activity entry, if it has one.
func (r *ActivityRecorder) Handle(event shared.Event) error {
	if event.SessionID() != r.sessionID {
		return nil
	}

	payload := event.Payload()

	switch event.EventType() {
	case shared.EventSessionStarted:
		r.log.Record(activity.NewEntry(activity.TypeLogin,
			"Login Activity",
			fmt.Sprintf("Logged in at %s", event.OccurredAt().Format(time.Kitchen)),
			tagLogin))

	case shared.EventSessionEnded:
		r.log.Record(activity.NewEntry(activity.TypeLogin,
			"Logged out",
			"Successfully logged out of your account",
			tagLogout))

	case shared.EventPathCompleted:
		r.log.Record(activity.NewEntry(activity.TypeCourseCompleted,
			"Course Completed!",
			fmt.Sprintf("Finished %v", payload["title"]),
			tagCourseDone))

	case shared.EventJobApplied:
		r.log.Record(activity.NewEntry(activity.TypeJobApplied,
			"Job Application",
			fmt.Sprintf("Applied to %v at %v", payload["title"], payload["company"]),
			tagJobApplied))

	case shared.EventAssistantAsked:
		r.log.Record(activity.NewEntry(activity.TypeAIInteraction,
			"AI Career Assistant",
			fmt.Sprintf(`Asked: "%v"`, payload["snippet"]),
			tagAIAssistant))
	}

	return nil
}
