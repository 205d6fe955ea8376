package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetricType identifies one cached metric family per tenant.
type MetricType string

const (
	MetricCommitment          MetricType = "commitment"
	MetricConsistency         MetricType = "consistency"
	MetricAhaMoments          MetricType = "aha_moments"
	MetricContentPathways     MetricType = "content_pathways"
	MetricPopularContentDaily MetricType = "popular_content_daily"
	MetricFeedbackThemes      MetricType = "feedback_themes"
)

// AllMetricTypes returns every metric type the pipeline can compute.
func AllMetricTypes() []MetricType {
	return []MetricType{
		MetricCommitment,
		MetricConsistency,
		MetricAhaMoments,
		MetricContentPathways,
		MetricPopularContentDaily,
		MetricFeedbackThemes,
	}
}

// ParseMetricType validates a raw metric type string.
func ParseMetricType(s string) (MetricType, error) {
	for _, mt := range AllMetricTypes() {
		if string(mt) == s {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown metric type %q", s)
}

// CachedMetric is one row of the per-tenant metrics cache. Rows are keyed by
// (tenant_id, metric_type), written only by the refresh scheduler via upsert,
// and retained past expiry so the read surface can serve last-known-good data.
type CachedMetric struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenantId"`
	MetricType   MetricType      `json:"metricType"`
	MetricData   json.RawMessage `json:"metricData"`
	CalculatedAt time.Time       `json:"calculatedAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

// IsStale reports whether the row has outlived its refresh-tier TTL.
func (m *CachedMetric) IsStale(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// =============================================================================
// Commitment Score
// =============================================================================

// CommitmentDistribution counts scored students per band. The three buckets
// always partition the scored set exactly.
type CommitmentDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	AtRisk int `json:"atRisk"`
}

// AtRiskStudent is one entry of the lowest-scoring slice of a tenant's cohort.
type AtRiskStudent struct {
	StudentID   string   `json:"studentId"`
	Score       int      `json:"score"`
	RiskFactors []string `json:"riskFactors"`
}

// CommitmentResult is the tenant-level commitment score aggregate.
type CommitmentResult struct {
	AverageScore   int                    `json:"averageScore"`
	Distribution   CommitmentDistribution `json:"distribution"`
	AtRiskStudents []AtRiskStudent        `json:"atRiskStudents"`
	TotalStudents  int                    `json:"totalStudents"`
}

// EmptyCommitmentResult is the defined zero-valued result for tenants with no
// scorable students.
func EmptyCommitmentResult() *CommitmentResult {
	return &CommitmentResult{
		AtRiskStudents: []AtRiskStudent{},
	}
}

// =============================================================================
// Consistency Score
// =============================================================================

// ConsistencyDistribution counts scored students per stability band.
type ConsistencyDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ConsistencyResult is the tenant-level week-over-week stability aggregate.
// WeekOverWeekTrend is nil when no genuine historical baseline exists; a
// fabricated percentage is never reported.
type ConsistencyResult struct {
	AverageScore      int                     `json:"averageScore"`
	Distribution      ConsistencyDistribution `json:"distribution"`
	TotalStudents     int                     `json:"totalStudents"`
	WeekOverWeekTrend *float64                `json:"weekOverWeekTrend"`
	TrendAvailable    bool                    `json:"trendAvailable"`
}

// EmptyConsistencyResult is the defined zero-valued consistency result.
func EmptyConsistencyResult() *ConsistencyResult {
	return &ConsistencyResult{}
}

// =============================================================================
// Aha-Moment Detector
// =============================================================================

// ExperienceSpike describes a content experience correlated with a positive
// engagement spike across the students who touched it.
type ExperienceSpike struct {
	Experience          string  `json:"experience"`
	Title               string  `json:"title"`
	AverageSpikePercent float64 `json:"averageSpikePercent"`
	StudentCount        int     `json:"studentCount"`
}

// StagnantStudent is a learner whose most recent qualifying event is older
// than the stagnation window.
type StagnantStudent struct {
	StudentID             string `json:"studentId"`
	DaysSinceLastActivity int    `json:"daysSinceLastActivity"`
}

// AhaMomentResult is the tenant-level breakthrough and stagnation aggregate.
type AhaMomentResult struct {
	TopExperiences        []ExperienceSpike `json:"topExperiences"`
	AverageTimeToFirstWin string            `json:"averageTimeToFirstWin"`
	StagnantCount         int               `json:"stagnantCount"`
	StagnantStudents      []StagnantStudent `json:"stagnantStudents"`
}

// EmptyAhaMomentResult is the defined zero-valued aha-moment result.
func EmptyAhaMomentResult() *AhaMomentResult {
	return &AhaMomentResult{
		TopExperiences:        []ExperienceSpike{},
		AverageTimeToFirstWin: "N/A",
		StagnantStudents:      []StagnantStudent{},
	}
}

// =============================================================================
// Pathway Analyzer
// =============================================================================

// PathwayEntry is one common 2-3 step experience sequence with its observed
// completion rate.
type PathwayEntry struct {
	Sequence       []string `json:"sequence"`
	CompletionRate float64  `json:"completionRate"`
	StudentCount   int      `json:"studentCount"`
}

// DeadEndExperience is a content experience after which a large share of
// students stop progressing.
type DeadEndExperience struct {
	Experience   string  `json:"experience"`
	Title        string  `json:"title"`
	DropOffRate  float64 `json:"dropOffRate"`
	StudentCount int     `json:"studentCount"`
}

// PowerCombination is an experience pair whose joint continuation rate beats
// the tenant baseline.
type PowerCombination struct {
	Experiences  []string `json:"experiences"`
	SuccessRate  float64  `json:"successRate"`
	Lift         float64  `json:"lift"`
	StudentCount int      `json:"studentCount"`
}

// PathwayResult is the tenant-level content-sequence effectiveness aggregate.
type PathwayResult struct {
	TopPathways       []PathwayEntry      `json:"topPathways"`
	DeadEnds          []DeadEndExperience `json:"deadEnds"`
	PowerCombinations []PowerCombination  `json:"powerCombinations"`
	TotalStudents     int                 `json:"totalStudents"`
}

// EmptyPathwayResult is the defined zero-valued pathway result.
func EmptyPathwayResult() *PathwayResult {
	return &PathwayResult{
		TopPathways:       []PathwayEntry{},
		DeadEnds:          []DeadEndExperience{},
		PowerCombinations: []PowerCombination{},
	}
}

// =============================================================================
// Supplementary metrics
// =============================================================================

// PopularContentItem is one experience ranked by trailing-window event volume.
type PopularContentItem struct {
	Experience   string `json:"experience"`
	Title        string `json:"title"`
	EventCount   int    `json:"eventCount"`
	StudentCount int    `json:"studentCount"`
}

// PopularContentResult is the daily popular-content aggregate.
type PopularContentResult struct {
	Items       []PopularContentItem `json:"items"`
	TotalEvents int                  `json:"totalEvents"`
}

// EmptyPopularContentResult is the defined zero-valued popular-content result.
func EmptyPopularContentResult() *PopularContentResult {
	return &PopularContentResult{Items: []PopularContentItem{}}
}

// FeedbackTheme is one feedback topic with its response volume and mean rating.
type FeedbackTheme struct {
	Topic         string  `json:"topic"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// FeedbackThemesResult is the tenant-level feedback aggregate.
type FeedbackThemesResult struct {
	Themes         []FeedbackTheme `json:"themes"`
	AverageRating  float64         `json:"averageRating"`
	TotalResponses int             `json:"totalResponses"`
}

// EmptyFeedbackThemesResult is the defined zero-valued feedback result.
func EmptyFeedbackThemesResult() *FeedbackThemesResult {
	return &FeedbackThemesResult{Themes: []FeedbackTheme{}}
}
