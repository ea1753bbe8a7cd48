package opportunity

// LiveOpportunity is a single posting from the live opportunities feed.
type LiveOpportunity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Kind        Kind     `json:"type"`
	PostedDate  string   `json:"posted_date"`
	ApplyURL    string   `json:"apply_url"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Salary      string   `json:"salary,omitempty"`
	PrizeMoney  string   `json:"prize_money,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Platform    string   `json:"platform"`
}

// Snapshot is the atomically replaced bundle of the three opportunity
// collections plus the feed's last-updated stamp. The three collections and
// the stamp always originate from the same fetch.
type Snapshot struct {
	Jobs        []LiveOpportunity `json:"jobs"`
	Internships []LiveOpportunity `json:"internships"`
	Hackathons  []LiveOpportunity `json:"hackathons"`
	LastUpdated string            `json:"last_updated,omitempty"`
}

// EmptySnapshot returns a snapshot with non-nil, empty collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Jobs:        []LiveOpportunity{},
		Internships: []LiveOpportunity{},
		Hackathons:  []LiveOpportunity{},
	}
}

// Normalize replaces nil collections with empty ones, so a feed response that
// omits a category degrades to "no entries" instead of failing.
func (s Snapshot) Normalize() Snapshot {
	if s.Jobs == nil {
		s.Jobs = []LiveOpportunity{}
	}
	if s.Internships == nil {
		s.Internships = []LiveOpportunity{}
	}
	if s.Hackathons == nil {
		s.Hackathons = []LiveOpportunity{}
	}
	return s
}

// Counts returns the number of entries per category.
func (s Snapshot) Counts() (jobs, internships, hackathons int) {
	return len(s.Jobs), len(s.Internships), len(s.Hackathons)
}
