package domain

import "time"

// HRVStatus is the canonical HRV balance classification.
type HRVStatus string

const (
	HRVBalanced   HRVStatus = "balanced"
	HRVUnbalanced HRVStatus = "unbalanced"
	HRVLow        HRVStatus = "low"
)

// SleepQuality is the canonical ordinal sleep quality scale.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// HRVMetrics is the normalized HRV slice of one day.
//
// ReflectsDate encodes the recovery-lag rule: an HRV reading attributed
// to calendar date D measures recovery from D-1's activities. It is set
// by the timing-correction step, not by the normalizer.
type HRVMetrics struct {
	Score       float64   `json:"score"`
	SevenDayAvg float64   `json:"seven_day_avg"`
	Status      HRVStatus `json:"status"`
	LastNight   float64   `json:"last_night"`

	MeasurementDate time.Time `json:"measurement_date,omitempty"`
	ReflectsDate    time.Time `json:"reflects_date,omitempty"`
}

type BodyBatteryMetrics struct {
	Start   int `json:"start"`
	End     int `json:"end"`
	Min     int `json:"min"`
	Max     int `json:"max"`
	Charged int `json:"charged"`
	Drained int `json:"drained"`
}

// SleepMetrics durations are minutes; upstream reports seconds.
type SleepMetrics struct {
	Duration   int          `json:"duration"`
	DeepSleep  int          `json:"deep_sleep"`
	LightSleep int          `json:"light_sleep"`
	RemSleep   int          `json:"rem_sleep"`
	Awake      int          `json:"awake"`
	Quality    SleepQuality `json:"quality"`
}

type StressMetrics struct {
	Avg int `json:"avg"`
	Max int `json:"max"`
	// Not derivable from any known upstream shape; always 0.
	RestingPeriods int `json:"resting_periods"`
}

type ActivityMetrics struct {
	Steps         int `json:"steps"`
	Calories      int `json:"calories"`
	ActiveMinutes int `json:"active_minutes"`
}

// DailyMetrics is the canonical per-user-per-date structure derived from
// raw metric records. Every numeric field is zero-defaulted when the
// source metric is absent or unparsable; the structure is never
// partially undefined.
type DailyMetrics struct {
	HRV         HRVMetrics         `json:"hrv"`
	BodyBattery BodyBatteryMetrics `json:"body_battery"`
	Sleep       SleepMetrics       `json:"sleep"`
	Stress      StressMetrics      `json:"stress"`
	Activity    ActivityMetrics    `json:"activity"`

	// True once timing correction ran for a date strictly in the past.
	// Gates pattern rules that reason about next-day outcomes.
	CanValidatePatterns bool `json:"can_validate_patterns"`

	// SourceMetrics lists the metric types that were actually present in
	// raw storage. Rules use this to tell "measured zero" apart from
	// "no data", so absent metrics skip rules instead of firing them.
	SourceMetrics []MetricType `json:"source_metrics,omitempty"`
}

// HasMetric reports whether a raw record of the given type backed this
// normalization.
func (m DailyMetrics) HasMetric(metric MetricType) bool {
	for _, t := range m.SourceMetrics {
		if t == metric {
			return true
		}
	}
	return false
}
