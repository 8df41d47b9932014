package domain

import "time"

// PatternType identifies one behavioral correlation rule.
type PatternType string

const (
	PatternSleepHRVCorrelation PatternType = "sleep_hrv_correlation"
	PatternEnergyDepletion     PatternType = "energy_depletion"
	PatternOptimalRecovery     PatternType = "optimal_recovery"
)

// PatternImpact classifies whether a detected pattern helps or hurts.
type PatternImpact string

const (
	ImpactPositive PatternImpact = "positive"
	ImpactNegative PatternImpact = "negative"
	ImpactNeutral  PatternImpact = "neutral"
)

// Pattern is a detected behavioral correlation. Confidence is a fixed
// per-rule constant, not computed from history.
type Pattern struct {
	Type        PatternType   `json:"type"`
	Confidence  float64       `json:"confidence"`
	Description string        `json:"description"`
	Impact      PatternImpact `json:"impact"`
}

// RecommendationTiming says when a recommendation should be acted on.
type RecommendationTiming string

const (
	TimingImmediate RecommendationTiming = "immediate"
	TimingToday     RecommendationTiming = "today"
	TimingThisWeek  RecommendationTiming = "this_week"
)

// Recommendation is a prioritized, actionable suggestion. Lower priority
// values are more urgent; result sets are sorted ascending by priority.
type Recommendation struct {
	Priority    int                  `json:"priority"`
	Category    string               `json:"category"`
	Action      string               `json:"action"`
	ExpectedROI float64              `json:"expected_roi"`
	Timing      RecommendationTiming `json:"timing"`
}

// AlertSeverity classifies alert urgency.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type Alert struct {
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AnalysisResult is the full analysis output for one user and date.
// All three slices are empty (never nil in the JSON sense) when no
// Garmin data exists for the day; that state is not an error.
type AnalysisResult struct {
	Date            time.Time        `json:"date"`
	AnalysisType    string           `json:"analysis_type,omitempty"`
	HasGarminData   bool             `json:"has_garmin_data"`
	Metrics         DailyMetrics     `json:"metrics"`
	Patterns        []Pattern        `json:"patterns"`
	Recommendations []Recommendation `json:"recommendations"`
	Alerts          []Alert          `json:"alerts"`
}
