package domain

import "time"

// InsightsContext is the serialized input handed to the LLM: the full
// analysis result plus the framework score for the same day.
type InsightsContext struct {
	Date           string          `json:"date"`
	Analysis       *AnalysisResult `json:"analysis"`
	FrameworkScore *FrameworkScore `json:"framework_score,omitempty"`
}

// LLMInsightsOutput is the strict JSON shape the model must return.
type LLMInsightsOutput struct {
	Summary      string   `json:"summary"`
	Observations []string `json:"observations"`
	Guidance     []string `json:"guidance"`
}

// InsightsResponse is the response body for the insights endpoint.
type InsightsResponse struct {
	Date        string            `json:"date"`
	Insights    LLMInsightsOutput `json:"insights"`
	GeneratedAt time.Time         `json:"generated_at"`
}
