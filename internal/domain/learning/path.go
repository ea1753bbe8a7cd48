// Package learning contains domain entities and business logic for learner
// learning paths and their progress. This is a pure domain layer with no
// infrastructure dependencies.
package learning

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Difficulty is the declared difficulty of a learning path.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// IsValid checks that the difficulty is one of the known values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Status is the progress state of a path. It is always derived from the
// progress value and never stored independently.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// StatusFor derives the status for a progress value.
// 0 means not started, 100 means completed, anything between is in progress.
func StatusFor(progress int) Status {
	switch {
	case progress <= 0:
		return StatusNotStarted
	case progress >= 100:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PATH ENTITY
// ══════════════════════════════════════════════════════════════════════════════

const (
	// AdvanceStep is the progress increment of a single "continue learning" action.
	AdvanceStep = 10

	// MaxProgress is the progress ceiling; Advance clamps here.
	MaxProgress = 100

	// DefaultEstimatedTime is assigned to locally created paths.
	DefaultEstimatedTime = "8-12 weeks"
)

// Path is a learning path with learner progress attached.
type Path struct {
	ID            string
	Title         string
	Description   string
	Progress      int
	EstimatedTime string
	Difficulty    Difficulty
	Skills        []string
	LastAccessed  time.Time
}

// NewPath creates a locally added path with zero progress.
// Title and description must contain non-whitespace content.
func NewPath(title, description string, difficulty Difficulty) (*Path, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return nil, shared.ErrEmptyPathTitle
	}
	if description == "" {
		return nil, shared.ErrEmptyDescription
	}
	if !difficulty.IsValid() {
		difficulty = DifficultyBeginner
	}

	return &Path{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   description,
		Progress:      0,
		EstimatedTime: DefaultEstimatedTime,
		Difficulty:    difficulty,
		Skills:        []string{},
		LastAccessed:  time.Now(),
	}, nil
}

// Status returns the derived status for the path's current progress.
func (p *Path) Status() Status {
	return StatusFor(p.Progress)
}

// MarshalJSON renders the path in the dashboard's wire shape, with the
// status derived from progress at serialization time.
func (p *Path) MarshalJSON() ([]byte, error) {
	out := struct {
		ID            string   `json:"id"`
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Progress      int      `json:"progress"`
		Status        Status   `json:"status"`
		EstimatedTime string   `json:"estimatedTime"`
		Difficulty    string   `json:"difficulty"`
		Skills        []string `json:"skills"`
		LastAccessed  string   `json:"lastAccessed,omitempty"`
	}{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Progress:      p.Progress,
		Status:        p.Status(),
		EstimatedTime: p.EstimatedTime,
		Difficulty:    string(p.Difficulty),
		Skills:        p.Skills,
	}
	if !p.LastAccessed.IsZero() {
		out.LastAccessed = p.LastAccessed.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// Advance increments progress by AdvanceStep, clamped at MaxProgress, and
// stamps LastAccessed. It reports whether this call completed the path.
// Advancing an already completed path is a no-op.
func (p *Path) Advance(now time.Time) (completed bool) {
	if p.Progress >= MaxProgress {
		return false
	}

	p.Progress += AdvanceStep
	if p.Progress > MaxProgress {
		p.Progress = MaxProgress
	}
	p.LastAccessed = now

	return p.Progress == MaxProgress
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// AverageProgress returns the unweighted mean progress of the given paths,
// rounded to the nearest integer. An empty collection averages to 0.
func AverageProgress(paths []*Path) int {
	if len(paths) == 0 {
		return 0
	}

	total := 0
	for _, p := range paths {
		total += p.Progress
	}

	// Round half up, as the reference dashboard does.
	return (total + len(paths)/2) / len(paths)
}

// ══════════════════════════════════════════════════════════════════════════════
// FALLBACK
// ══════════════════════════════════════════════════════════════════════════════

// FallbackPath returns the deterministic placeholder path shown when the
// learning feed is unreachable. Degrading to a placeholder keeps the view
// populated instead of silently empty.
func FallbackPath() *Path {
	return &Path{
		ID:            "fallback-1",
		Title:         "Full-Stack Web Development",
		Description:   "Master React, Node.js, and modern web technologies",
		Progress:      35,
		EstimatedTime: "12 weeks",
		Difficulty:    DifficultyIntermediate,
		Skills:        []string{"React", "Node.js", "MongoDB", "TypeScript"},
		LastAccessed:  time.Date(2024, time.January, 20, 10, 30, 0, 0, time.UTC),
	}
}
