// Package activity implements the session activity log: an append-only,
// newest-first record of user-visible events.
package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the kinds of events the log records.
type Type string

const (
	TypeCourseCompleted   Type = "course_completed"
	TypeJobApplied        Type = "job_applied"
	TypeCertificateEarned Type = "certificate_earned"
	TypeAIInteraction     Type = "ai_interaction"
	TypeLogin             Type = "login"
)

// Tag is opaque presentation metadata carried by an entry. The core never
// interprets it; the rendering boundary resolves it to concrete visuals.
type Tag struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Entry is one immutable activity record.
type Entry struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Tag         Tag       `json:"tag"`
}

// NewEntry creates an entry stamped now with a generated ID.
func NewEntry(t Type, title, description string, tag Tag) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Type:        t,
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
		Tag:         tag,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG
// ══════════════════════════════════════════════════════════════════════════════

// Log is an append-only activity log, newest first. Entries are never
// reordered or deleted; any display bound is the presentation layer's concern.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{entries: make([]Entry, 0, 16)}
}

// Record prepends the entry.
func (l *Log) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{e}, l.entries...)
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
