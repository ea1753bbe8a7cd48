package backend

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEED DTOs
// ══════════════════════════════════════════════════════════════════════════════

// LearningPathDTO mirrors a learning path as the backend serves it.
type LearningPathDTO struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Progress      int      `json:"progress"`
	EstimatedTime string   `json:"estimatedTime"`
	Difficulty    string   `json:"difficulty"`
	Skills        []string `json:"skills"`
	LastAccessed  string   `json:"lastAccessed,omitempty"`
}

// PathsResponseDTO is the learning paths feed envelope.
type PathsResponseDTO struct {
	Paths []LearningPathDTO `json:"paths"`
}

// JobRecommendationDTO mirrors a job recommendation as the backend serves it.
// The feed does not label job vs internship; the mapper derives it from the title.
type JobRecommendationDTO struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Salary    string   `json:"salary"`
	Match     int      `json:"match"`
	Skills    []string `json:"skills"`
	Platform  string   `json:"platform"`
	Applied   bool     `json:"applied,omitempty"`
	AppliedAt string   `json:"appliedAt,omitempty"`
}

// JobsResponseDTO is the job recommendations feed envelope.
type JobsResponseDTO struct {
	Jobs []JobRecommendationDTO `json:"jobs"`
}

// StatsDTO is the dashboard stats feed.
type StatsDTO struct {
	CareerScore     int `json:"career_score"`
	AverageProgress int `json:"average_progress"`
}

// LiveOpportunityDTO mirrors a live opportunity posting.
type LiveOpportunityDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	PostedDate  string   `json:"posted_date"`
	ApplyURL    string   `json:"apply_url"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Salary      string   `json:"salary,omitempty"`
	PrizeMoney  string   `json:"prize_money,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Platform    string   `json:"platform"`
}

// TotalCountDTO carries the per-category counts of an opportunities response.
type TotalCountDTO struct {
	Jobs        int `json:"jobs"`
	Internships int `json:"internships"`
	Hackathons  int `json:"hackathons"`
}

// OpportunitiesResponseDTO is the combined live-opportunities snapshot.
// Any of the three arrays may be absent; the mapper treats missing as empty.
type OpportunitiesResponseDTO struct {
	Jobs        []LiveOpportunityDTO `json:"jobs"`
	Internships []LiveOpportunityDTO `json:"internships"`
	Hackathons  []LiveOpportunityDTO `json:"hackathons"`
	TotalCount  *TotalCountDTO       `json:"total_count,omitempty"`
	LastUpdated string               `json:"last_updated,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANT DTOs
// ══════════════════════════════════════════════════════════════════════════════

// AssistantContextDTO is the minimal learner context of an assistant request.
type AssistantContextDTO struct {
	Role       string `json:"role"`
	Profession string `json:"profession"`
}

// AssistantRequestDTO is the assistant chat request body.
type AssistantRequestDTO struct {
	Message string              `json:"message"`
	Context AssistantContextDTO `json:"context"`
}

// AssistantResponseDTO is the assistant chat response body.
type AssistantResponseDTO struct {
	Response string `json:"response"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR DTOs
// ══════════════════════════════════════════════════════════════════════════════

// APIErrorDTO is the backend's error body.
type APIErrorDTO struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend api error %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("backend api error (status %d): %s", e.Status, e.Message)
}

// RateLimitError is returned when the backend answers 429.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s (retry after %s)", e.Message, e.RetryAfter)
}
