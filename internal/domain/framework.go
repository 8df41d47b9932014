package domain

// DimensionStatus classifies one framework dimension by its score.
type DimensionStatus string

const (
	StatusOptimal        DimensionStatus = "optimal"
	StatusGood           DimensionStatus = "good"
	StatusNeedsAttention DimensionStatus = "needs_attention"
	StatusCritical       DimensionStatus = "critical"
)

// DimensionTrend describes a dimension's direction over recent days.
type DimensionTrend string

const (
	TrendImproving DimensionTrend = "improving"
	TrendStable    DimensionTrend = "stable"
	TrendDeclining DimensionTrend = "declining"
)

// FrameworkDimensions is the fixed order of the seven scored dimensions.
var FrameworkDimensions = []string{
	"body", "mind", "soul", "sleep", "energy", "stress", "activity",
}

// DimensionScore is one of the seven framework dimensions, scored 0-3.
type DimensionScore struct {
	Name   string          `json:"name"`
	Score  float64         `json:"score"`
	Status DimensionStatus `json:"status"`
	Trend  DimensionTrend  `json:"trend"`
}

// FrameworkScore is the 7-dimension composite wellness score. Total is
// the plain sum of the dimension scores, displayed on a 0-21 scale.
type FrameworkScore struct {
	Dimensions []DimensionScore `json:"dimensions"`
	Total      float64          `json:"total"`
}

// StatusForScore maps a 0-3 dimension score onto its status band.
func StatusForScore(score float64) DimensionStatus {
	switch {
	case score >= 2.5:
		return StatusOptimal
	case score >= 2.0:
		return StatusGood
	case score >= 1.5:
		return StatusNeedsAttention
	default:
		return StatusCritical
	}
}
