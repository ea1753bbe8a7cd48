// Package opportunity contains domain entities for job recommendations and
// the live opportunities feed (jobs, internships, hackathons).
package opportunity

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind distinguishes the flavor of an opportunity.
type Kind string

const (
	KindJob        Kind = "job"
	KindInternship Kind = "internship"
	KindHackathon  Kind = "hackathon"
)

// KindFromTitle derives job vs internship from the title, as the feed itself
// does not label recommendations.
func KindFromTitle(title string) Kind {
	if strings.Contains(strings.ToLower(title), "intern") {
		return KindInternship
	}
	return KindJob
}

// JobRecommendation is a matched job or internship recommendation.
type JobRecommendation struct {
	ID       string
	Title    string
	Company  string
	Location string
	Salary   string
	Match    int
	Skills   []string
	Platform string
	Kind     Kind

	// Applied is true once the learner applied through the dashboard.
	// AppliedAt is set exactly once, on the first apply.
	Applied   bool
	AppliedAt time.Time
}

// Apply marks the recommendation as applied. Applying again is a no-op;
// AppliedAt keeps its original stamp. It reports whether this call changed
// anything.
func (j *JobRecommendation) Apply(now time.Time) bool {
	if j.Applied {
		return false
	}
	j.Applied = true
	j.AppliedAt = now
	return true
}

// MarshalJSON renders the recommendation in the dashboard's wire shape.
// The appliedAt stamp only appears once the learner has applied.
func (j *JobRecommendation) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string   `json:"id"`
		Title     string   `json:"title"`
		Company   string   `json:"company"`
		Location  string   `json:"location"`
		Salary    string   `json:"salary"`
		Match     int      `json:"match"`
		Skills    []string `json:"skills"`
		Platform  string   `json:"platform"`
		Kind      Kind     `json:"kind"`
		Applied   bool     `json:"applied"`
		AppliedAt string   `json:"appliedAt,omitempty"`
	}{
		ID:       j.ID,
		Title:    j.Title,
		Company:  j.Company,
		Location: j.Location,
		Salary:   j.Salary,
		Match:    j.Match,
		Skills:   j.Skills,
		Platform: j.Platform,
		Kind:     j.Kind,
		Applied:  j.Applied,
	}
	if !j.AppliedAt.IsZero() {
		out.AppliedAt = j.AppliedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}
