package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/activity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// SessionMetrics is the metrics surface a session reports into. Optional.
type SessionMetrics interface {
	AssistantMetrics
	RecordRefresh(feed string, duration time.Duration, success bool)
}

// SessionConfig carries everything needed to start a session.
type SessionConfig struct {
	// ID reuses an existing session identity; empty means generate one.
	ID string

	// Token is the bearer credential all backend calls use.
	Token string

	UserID string
	Email  string
	Role   string

	Client  FeedClient
	Events  shared.EventBus
	Archive SnapshotArchive
	Metrics SessionMetrics
}

// Session owns all state for one logged-in learner: the four feed
// stores, the assistant conversation, the activity log, and the notice
// buffer. Everything but the session registry entry lives in memory and
// dies with the session.
type Session struct {
	id          string
	userID      string
	email       string
	displayName string
	role        string
	token       string
	startedAt   time.Time

	events  shared.EventBus
	metrics SessionMetrics

	learning      *LearningStore
	jobs          *JobStore
	opportunities *OpportunityStore
	stats         *StatsStore
	assistant     *AssistantSession

	activityLog *activity.Log
	notices     *NoticeSurface
}

// NewSession builds a session, wires its event subscribers, and records
// the login. The first refresh pass is the caller's job.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Token == "" {
		return nil, shared.ErrNoCredential
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	displayName := displayNameFor(cfg.Email)
	if cfg.Role == "" {
		cfg.Role = "student"
	}

	s := &Session{
		id:          id,
		userID:      cfg.UserID,
		email:       cfg.Email,
		displayName: displayName,
		role:        cfg.Role,
		token:       cfg.Token,
		startedAt:   time.Now(),
		events:      cfg.Events,
		metrics:     cfg.Metrics,
		activityLog: activity.NewLog(),
	}

	s.learning = NewLearningStore(id, cfg.Token, cfg.Client, cfg.Events)
	s.jobs = NewJobStore(id, cfg.Token, cfg.Client, cfg.Events)
	s.opportunities = NewOpportunityStore(id, cfg.Token, cfg.Client, cfg.Events, cfg.Archive)
	s.stats = NewStatsStore(id, cfg.Token, cfg.Client, cfg.Events)
	s.assistant = NewAssistantSession(id, cfg.Token, displayName, assistant.Context{
		Role:       cfg.Role,
		Profession: displayName,
	}, cfg.Client, cfg.Events, cfg.Metrics)

	s.notices = NewNoticeSurface(id)

	if cfg.Events != nil {
		recorder := NewActivityRecorder(id, s.activityLog)
		if err := recorder.Attach(cfg.Events); err != nil {
			return nil, err
		}
		if err := s.notices.Attach(cfg.Events); err != nil {
			return nil, err
		}

		cfg.Events.Publish(shared.NewEvent(shared.EventSessionStarted, id, map[string]any{
			"email": cfg.Email,
		}))
	}

	return s, nil
}

// displayNameFor derives the learner's display name from the email
// local part, matching the greeting the web dashboard shows.
func displayNameFor(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// ID implements the refresh job's target interface.
func (s *Session) ID() string { return s.id }

// Email returns the learner's email.
func (s *Session) Email() string { return s.email }

// DisplayName returns the derived display name.
func (s *Session) DisplayName() string { return s.displayName }

// Token returns the session's bearer credential.
func (s *Session) Token() string { return s.token }

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH TARGET
// ══════════════════════════════════════════════════════════════════════════════

// RefreshLearning re-pulls the learning paths feed.
func (s *Session) RefreshLearning(ctx context.Context) error {
	return s.timed(ctx, "learning_paths", s.learning.Refresh)
}

// RefreshJobs re-pulls the job recommendations feed.
func (s *Session) RefreshJobs(ctx context.Context) error {
	return s.timed(ctx, "job_recommendations", s.jobs.Refresh)
}

// RefreshStats re-pulls the dashboard stats feed.
func (s *Session) RefreshStats(ctx context.Context) error {
	return s.timed(ctx, "dashboard_stats", s.stats.Refresh)
}

// RefreshOpportunities re-pulls the live opportunities feed.
func (s *Session) RefreshOpportunities(ctx context.Context) error {
	return s.timed(ctx, "live_opportunities", s.opportunities.Refresh)
}

func (s *Session) timed(ctx context.Context, feed string, refresh func(context.Context) error) error {
	startedAt := time.Now()
	err := refresh(ctx)
	if s.metrics != nil {
		s.metrics.RecordRefresh(feed, time.Since(startedAt), err == nil)
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Learning exposes the learning store.
func (s *Session) Learning() *LearningStore { return s.learning }

// Jobs exposes the job store.
func (s *Session) Jobs() *JobStore { return s.jobs }

// Opportunities exposes the opportunity store.
func (s *Session) Opportunities() *OpportunityStore { return s.opportunities }

// Assistant exposes the assistant conversation.
func (s *Session) Assistant() *AssistantSession { return s.assistant }

// Activity returns the activity log, newest first.
func (s *Session) Activity() []activity.Entry { return s.activityLog.Entries() }

// Notices drains the pending notice buffer.
func (s *Session) Notices() []Notice { return s.notices.Drain() }

// Seed loads archived state before the first refresh pass.
func (s *Session) Seed(ctx context.Context) {
	s.opportunities.Seed(ctx)
}

// End records the logout. The manager tears down scheduling and
// registry state around this call.
func (s *Session) End() {
	if s.events != nil {
		s.events.Publish(shared.NewEvent(shared.EventSessionEnded, s.id, nil))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD VIEW
// ══════════════════════════════════════════════════════════════════════════════

// UserInfo is the view's identity block.
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// View is the assembled dashboard state a single read returns.
type View struct {
	User               UserInfo                         `json:"user"`
	CareerScore        int                              `json:"career_score"`
	AverageProgress    int                              `json:"average_progress"`
	LearningPaths      []*learning.Path                 `json:"learning_paths"`
	LearningDegraded   bool                             `json:"learning_degraded,omitempty"`
	JobRecommendations []*opportunity.JobRecommendation `json:"job_recommendations"`
	Opportunities      opportunity.Snapshot             `json:"opportunities"`
	Activity           []activity.Entry                 `json:"activity"`
	Transcript         []assistant.Message              `json:"transcript"`
	Notices            []Notice                         `json:"notices,omitempty"`
}

// View assembles the current dashboard state. Reading drains the notice
// buffer.
//
// The average progress prefers the stats feed once it has succeeded;
// before that it falls back to the value derived from the learning
// paths themselves.
func (s *Session) View() View {
	stats, fromFeed := s.stats.Stats()

	average := stats.AverageProgress
	if !fromFeed {
		average = s.learning.Average()
	}

	return View{
		User: UserInfo{
			ID:          s.userID,
			Email:       s.email,
			DisplayName: s.displayName,
			Role:        s.role,
		},
		CareerScore:        stats.CareerScore,
		AverageProgress:    average,
		LearningPaths:      s.learning.Paths(),
		LearningDegraded:   s.learning.Degraded(),
		JobRecommendations: s.jobs.Jobs(),
		Opportunities:      s.opportunities.Snapshot(),
		Activity:           s.activityLog.Entries(),
		Transcript:         s.assistant.Transcript(),
		Notices:            s.notices.Drain(),
	}
}
