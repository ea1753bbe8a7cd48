package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_RecordPrepends(t *testing.T) {
	log := NewLog()

	first := NewEntry(TypeLogin, "Login Activity", "Logged in", Tag{Icon: "log-out", Color: "text-blue-400"})
	second := NewEntry(TypeJobApplied, "Job Application", "Applied to Go Developer at Acme", Tag{Icon: "briefcase", Color: "text-blue-400"})

	log.Record(first)
	log.Record(second)

	entries := log.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID, "newest entry comes first")
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestLog_Recent(t *testing.T) {
	log := NewLog()
	for i := 0; i < 7; i++ {
		log.Record(NewEntry(TypeAIInteraction, "AI Career Assistant", "Asked something", Tag{}))
	}

	assert.Len(t, log.Recent(5), 5)
	assert.Len(t, log.Recent(0), 7)
	assert.Len(t, log.Recent(100), 7)
	assert.Equal(t, 7, log.Len())
}

func TestLog_EntriesReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Record(NewEntry(TypeLogin, "Login Activity", "Logged in", Tag{}))

	entries := log.Entries()
	entries[0].Title = "mutated"

	assert.Equal(t, "Login Activity", log.Entries()[0].Title)
}
