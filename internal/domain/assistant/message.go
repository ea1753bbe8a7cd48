// Package assistant contains the message entity and fixed reply texts for the
// AI career assistant conversation.
package assistant

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the assistant transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a transcript message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Context is the minimal learner context sent with each remote assistant call.
type Context struct {
	Role       string `json:"role"`
	Profession string `json:"profession"`
}

// greetingFormat seeds every transcript; the %s is the learner's display name.
const greetingFormat = `Hi %s! 👋 I'm your AI Career Assistant. I can help you with career advice, job recommendations, interview prep, and skill development. What would you like to know?`

// Greeting returns the seeded assistant greeting for a learner.
func Greeting(displayName string) string {
	return fmt.Sprintf(greetingFormat, displayName)
}

// OfflineReply is the deterministic assistant answer used when the remote
// assistant call fails. It is defined once here so the fallback content cannot
// drift between call sites.
const OfflineReply = `I'm here to help with your career journey! I can assist with:

🎯 **Career Guidance**: Path recommendations, goal setting
📚 **Learning**: Course suggestions, skill development
💼 **Job Search**: Resume tips, interview prep
📊 **Market Insights**: Salary data, industry trends

What would you like to explore today? 🚀`

// SummarySnippet returns the first 50 characters of a message for the
// activity log, ellipsized when longer.
func SummarySnippet(text string) string {
	const limit = 50
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
