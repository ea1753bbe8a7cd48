package backend

import (
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// Mapper converts backend DTOs into domain entities.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// PathFromDTO converts a learning path DTO. Status is never taken from the
// wire; it is derived from progress by the domain.
func (m *Mapper) PathFromDTO(dto LearningPathDTO) *learning.Path {
	skills := dto.Skills
	if skills == nil {
		skills = []string{}
	}

	return &learning.Path{
		ID:            dto.ID,
		Title:         dto.Title,
		Description:   dto.Description,
		Progress:      clampProgress(dto.Progress),
		EstimatedTime: dto.EstimatedTime,
		Difficulty:    learning.Difficulty(dto.Difficulty),
		Skills:        skills,
		LastAccessed:  parseTime(dto.LastAccessed),
	}
}

// PathsFromDTO converts the learning paths feed.
func (m *Mapper) PathsFromDTO(resp PathsResponseDTO) []*learning.Path {
	paths := make([]*learning.Path, 0, len(resp.Paths))
	for _, dto := range resp.Paths {
		paths = append(paths, m.PathFromDTO(dto))
	}
	return paths
}

// JobFromDTO converts a job recommendation DTO, deriving job vs internship
// from the title.
func (m *Mapper) JobFromDTO(dto JobRecommendationDTO) *opportunity.JobRecommendation {
	skills := dto.Skills
	if skills == nil {
		skills = []string{}
	}

	return &opportunity.JobRecommendation{
		ID:        dto.ID,
		Title:     dto.Title,
		Company:   dto.Company,
		Location:  dto.Location,
		Salary:    dto.Salary,
		Match:     dto.Match,
		Skills:    skills,
		Platform:  dto.Platform,
		Kind:      opportunity.KindFromTitle(dto.Title),
		Applied:   dto.Applied,
		AppliedAt: parseTime(dto.AppliedAt),
	}
}

// JobsFromDTO converts the job recommendations feed.
func (m *Mapper) JobsFromDTO(resp JobsResponseDTO) []*opportunity.JobRecommendation {
	jobs := make([]*opportunity.JobRecommendation, 0, len(resp.Jobs))
	for _, dto := range resp.Jobs {
		jobs = append(jobs, m.JobFromDTO(dto))
	}
	return jobs
}

// StatsFromDTO converts the dashboard stats feed.
func (m *Mapper) StatsFromDTO(dto StatsDTO) shared.DashboardStats {
	return shared.DashboardStats{
		CareerScore:     dto.CareerScore,
		AverageProgress: dto.AverageProgress,
	}
}

// OpportunityFromDTO converts a single live opportunity.
func (m *Mapper) OpportunityFromDTO(dto LiveOpportunityDTO) opportunity.LiveOpportunity {
	tags := dto.Tags
	if tags == nil {
		tags = []string{}
	}

	return opportunity.LiveOpportunity{
		ID:          dto.ID,
		Title:       dto.Title,
		Company:     dto.Company,
		Location:    dto.Location,
		Kind:        opportunity.Kind(dto.Type),
		PostedDate:  dto.PostedDate,
		ApplyURL:    dto.ApplyURL,
		Tags:        tags,
		Description: dto.Description,
		Salary:      dto.Salary,
		PrizeMoney:  dto.PrizeMoney,
		Deadline:    dto.Deadline,
		Platform:    dto.Platform,
	}
}

// SnapshotFromDTO converts the combined opportunities response. Absent
// categories become empty collections; the refresh never fails on a missing
// array.
func (m *Mapper) SnapshotFromDTO(resp OpportunitiesResponseDTO) opportunity.Snapshot {
	snap := opportunity.Snapshot{
		Jobs:        m.opportunitiesFromDTO(resp.Jobs),
		Internships: m.opportunitiesFromDTO(resp.Internships),
		Hackathons:  m.opportunitiesFromDTO(resp.Hackathons),
		LastUpdated: resp.LastUpdated,
	}
	return snap.Normalize()
}

func (m *Mapper) opportunitiesFromDTO(dtos []LiveOpportunityDTO) []opportunity.LiveOpportunity {
	out := make([]opportunity.LiveOpportunity, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, m.OpportunityFromDTO(dto))
	}
	return out
}

// clampProgress bounds wire progress into [0, 100].
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// parseTime parses an RFC3339 timestamp, returning the zero time when the
// field is absent or malformed.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
