package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
)

// Fixed per-rule confidence constants. Not learned from history; kept
// literal for behavioral compatibility with the pattern engine they
// were calibrated against.
const (
	ConfidenceSleepHRV        = 0.85
	ConfidenceEnergyDepletion = 0.78
	ConfidenceOptimalRecovery = 0.92
)

// Rule thresholds.
const (
	ShortSleepMinutes      = 420
	LowBodyBatteryEnd      = 30
	RecoveryRatio          = 1.1
	LowHRVScore            = 35
	CriticalHRVScore       = 25
	HighStressAvg          = 50
	CriticalBodyBatteryEnd = 20
)

// AnalysisService produces patterns, recommendations and alerts for one
// user and date from raw Garmin storage.
type AnalysisService interface {
	// Analyze runs the full pipeline: read raw records, normalize, apply
	// timing correction, then evaluate all rule sets. A day without any
	// Garmin data yields empty slices, never an error.
	Analyze(ctx context.Context, userID uuid.UUID, date time.Time, analysisType string) (*domain.AnalysisResult, error)
}

type analysisService struct {
	rawRepo  repository.RawMetricRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(rawRepo repository.RawMetricRepository, userRepo repository.UserRepository) AnalysisService {
	return &analysisService{
		rawRepo:  rawRepo,
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *analysisService) Analyze(ctx context.Context, userID uuid.UUID, date time.Time, analysisType string) (*domain.AnalysisResult, error) {
	tracer := otel.Tracer("gaf-insight-engine/analysis")
	ctx, span := tracer.Start(ctx, "AnalysisService.Analyze",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("analysis.date", date.Format("2006-01-02")),
			attribute.String("analysis.type", analysisType),
		),
	)
	defer span.End()

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	records, err := s.rawRepo.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		Date:            domain.DateOnly(date),
		AnalysisType:    analysisType,
		Patterns:        []domain.Pattern{},
		Recommendations: []domain.Recommendation{},
		Alerts:          []domain.Alert{},
	}

	// Expected state for users who have not synced; not an error.
	if len(records) == 0 {
		span.SetAttributes(attribute.Bool("analysis.has_data", false))
		return result, nil
	}

	now := s.now()
	metrics := ApplyTiming(Normalize(records), date, now)

	result.HasGarminData = true
	result.Metrics = metrics
	result.Patterns = DetectPatterns(metrics)
	result.Recommendations = BuildRecommendations(metrics)
	result.Alerts = BuildAlerts(metrics, now)

	span.SetAttributes(
		attribute.Bool("analysis.has_data", true),
		attribute.Int("analysis.patterns", len(result.Patterns)),
		attribute.Int("analysis.recommendations", len(result.Recommendations)),
		attribute.Int("analysis.alerts", len(result.Alerts)),
	)

	return result, nil
}

// DetectPatterns evaluates the fixed rule set. Rules are independent;
// several may fire for one day. A rule whose required metrics are absent
// is silently skipped.
func DetectPatterns(m domain.DailyMetrics) []domain.Pattern {
	patterns := []domain.Pattern{}

	if m.HasMetric(domain.MetricSleep) && m.HasMetric(domain.MetricHRV) &&
		m.Sleep.Duration < ShortSleepMinutes {
		patterns = append(patterns, domain.Pattern{
			Type:       domain.PatternSleepHRVCorrelation,
			Confidence: ConfidenceSleepHRV,
			Description: fmt.Sprintf(
				"Short sleep (%d min) alongside HRV of %.0f ms: insufficient sleep typically suppresses next-day HRV",
				m.Sleep.Duration, m.HRV.Score),
			Impact: domain.ImpactNegative,
		})
	}

	if m.HasMetric(domain.MetricBodyBattery) && m.BodyBattery.End < LowBodyBatteryEnd {
		patterns = append(patterns, domain.Pattern{
			Type:       domain.PatternEnergyDepletion,
			Confidence: ConfidenceEnergyDepletion,
			Description: fmt.Sprintf(
				"Body battery ended the day at %d: energy reserves were fully depleted",
				m.BodyBattery.End),
			Impact: domain.ImpactNegative,
		})
	}

	if m.HasMetric(domain.MetricHRV) && m.HRV.Score > RecoveryRatio*m.HRV.SevenDayAvg {
		patterns = append(patterns, domain.Pattern{
			Type:       domain.PatternOptimalRecovery,
			Confidence: ConfidenceOptimalRecovery,
			Description: fmt.Sprintf(
				"HRV of %.0f ms is well above the 7-day average of %.0f ms: recovery is ahead of baseline",
				m.HRV.Score, m.HRV.SevenDayAvg),
			Impact: domain.ImpactPositive,
		})
	}

	return patterns
}

// BuildRecommendations maps normalized metrics to prioritized actions,
// sorted ascending by priority (lower = more urgent).
func BuildRecommendations(m domain.DailyMetrics) []domain.Recommendation {
	recs := []domain.Recommendation{}

	if m.HasMetric(domain.MetricHRV) && m.HRV.Score < LowHRVScore {
		recs = append(recs, domain.Recommendation{
			Priority:    1,
			Category:    "Recovery",
			Action:      "HRV is low. Prioritize rest today: skip intense training, go to bed early, avoid alcohol.",
			ExpectedROI: 0.85,
			Timing:      domain.TimingImmediate,
		})
	}

	if m.HasMetric(domain.MetricSleep) && m.Sleep.Duration < ShortSleepMinutes {
		recs = append(recs, domain.Recommendation{
			Priority:    2,
			Category:    "Sleep",
			Action:      "Last night was under 7 hours. Plan an earlier bedtime tonight to repay the deficit.",
			ExpectedROI: 0.75,
			Timing:      domain.TimingToday,
		})
	}

	if m.HasMetric(domain.MetricStress) && m.Stress.Avg > HighStressAvg {
		recs = append(recs, domain.Recommendation{
			Priority:    3,
			Category:    "Stress",
			Action:      "Average stress is elevated. Schedule short breathing breaks and reduce stimulants.",
			ExpectedROI: 0.65,
			Timing:      domain.TimingImmediate,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})

	return recs
}

// BuildAlerts maps normalized metrics to severity-classified alerts.
func BuildAlerts(m domain.DailyMetrics, now time.Time) []domain.Alert {
	alerts := []domain.Alert{}

	if m.HasMetric(domain.MetricHRV) && m.HRV.Score < CriticalHRVScore {
		alerts = append(alerts, domain.Alert{
			Severity:    domain.SeverityCritical,
			Message:     fmt.Sprintf("HRV of %.0f ms is critically low; recovery capacity is severely reduced", m.HRV.Score),
			TriggeredAt: now,
		})
	}

	if m.HasMetric(domain.MetricBodyBattery) && m.BodyBattery.End < CriticalBodyBatteryEnd {
		alerts = append(alerts, domain.Alert{
			Severity:    domain.SeverityWarning,
			Message:     fmt.Sprintf("Body battery ended at %d; reserves are nearly exhausted", m.BodyBattery.End),
			TriggeredAt: now,
		})
	}

	if m.HasMetric(domain.MetricSleep) && m.Sleep.Quality == domain.SleepPoor {
		alerts = append(alerts, domain.Alert{
			Severity:    domain.SeverityWarning,
			Message:     "Sleep quality was poor last night",
			TriggeredAt: now,
		})
	}

	return alerts
}
