package shared

import "time"

// DashboardStats are the aggregate metrics the stats feed reports.
type DashboardStats struct {
	CareerScore     int `json:"career_score"`
	AverageProgress int `json:"average_progress"`
}

// DefaultStats are the values shown before the stats feed has ever succeeded.
func DefaultStats() DashboardStats {
	return DashboardStats{CareerScore: 85, AverageProgress: 0}
}

// SessionRecord is the durable identity of a session: the one piece of
// session state allowed to outlive a process restart.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	StartedAt time.Time `json:"started_at"`
}
