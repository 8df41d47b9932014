package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
)

const (
	// TrendWindowDays is how far back dimension trends look.
	TrendWindowDays = 7

	// trendSlope is the per-day slope beyond which a trend counts as
	// moving rather than stable.
	trendSlope = 0.05

	targetSleepMinutes = 480
	targetDailySteps   = 10000
)

// FrameworkService computes the 7-dimension composite wellness score
// (body, mind, soul, sleep, energy, stress, activity; each 0-3, total
// 0-21) as a deterministic weighted function of normalized metrics.
type FrameworkService interface {
	Compute(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.FrameworkScore, error)
}

type frameworkService struct {
	rawRepo  repository.RawMetricRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewFrameworkService creates a new FrameworkService.
func NewFrameworkService(rawRepo repository.RawMetricRepository, userRepo repository.UserRepository) FrameworkService {
	return &frameworkService{
		rawRepo:  rawRepo,
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *frameworkService) Compute(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.FrameworkScore, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	day := domain.DateOnly(date)

	// One dimension-score vector per day in the trend window, oldest
	// first; days without data are skipped rather than zero-filled so
	// sync gaps do not read as crashes in the trend.
	history := make(map[string][]float64, len(domain.FrameworkDimensions))
	var todayScores map[string]float64

	for offset := TrendWindowDays - 1; offset >= 0; offset-- {
		d := day.AddDate(0, 0, -offset)
		records, err := s.rawRepo.ListByUserAndDate(ctx, userID, d)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			continue
		}

		metrics := ApplyTiming(Normalize(records), d, s.now())
		scores := dimensionScores(metrics)
		for name, score := range scores {
			history[name] = append(history[name], score)
		}
		if offset == 0 {
			todayScores = scores
		}
	}

	result := &domain.FrameworkScore{
		Dimensions: make([]domain.DimensionScore, 0, len(domain.FrameworkDimensions)),
	}

	for _, name := range domain.FrameworkDimensions {
		score := 0.0
		if todayScores != nil {
			score = todayScores[name]
		}
		result.Dimensions = append(result.Dimensions, domain.DimensionScore{
			Name:   name,
			Score:  round2(score),
			Status: domain.StatusForScore(score),
			Trend:  trendFor(history[name]),
		})
		result.Total += score
	}
	result.Total = round2(result.Total)

	return result, nil
}

// dimensionScores maps one day's normalized metrics onto the seven
// dimensions, each clamped to [0,3].
func dimensionScores(m domain.DailyMetrics) map[string]float64 {
	sleep := sleepDimension(m)
	energy := energyDimension(m)
	stress := stressDimension(m)
	activity := activityDimension(m)
	recovery := recoveryComponent(m)

	body := 0.5*recovery + 0.3*energy + 0.2*activity
	mind := 0.6*stress + 0.4*sleep
	// No direct biometric input exists for soul; it tracks overall
	// balance across the measured dimensions.
	soul := (sleep + energy + stress + activity + recovery) / 5

	return map[string]float64{
		"body":     clampScore(body),
		"mind":     clampScore(mind),
		"soul":     clampScore(soul),
		"sleep":    clampScore(sleep),
		"energy":   clampScore(energy),
		"stress":   clampScore(stress),
		"activity": clampScore(activity),
	}
}

func sleepDimension(m domain.DailyMetrics) float64 {
	if !m.HasMetric(domain.MetricSleep) {
		return 1.5
	}
	quality := map[domain.SleepQuality]float64{
		domain.SleepPoor:      0.75,
		domain.SleepFair:      1.5,
		domain.SleepGood:      2.25,
		domain.SleepExcellent: 3,
	}[m.Sleep.Quality]

	duration := 3 * math.Min(float64(m.Sleep.Duration)/targetSleepMinutes, 1)
	return 0.6*quality + 0.4*duration
}

func energyDimension(m domain.DailyMetrics) float64 {
	if !m.HasMetric(domain.MetricBodyBattery) {
		return 1.5
	}
	return 3 * float64(m.BodyBattery.End) / 100
}

func stressDimension(m domain.DailyMetrics) float64 {
	if !m.HasMetric(domain.MetricStress) {
		return 1.5
	}
	return 3 * (100 - float64(m.Stress.Avg)) / 100
}

func activityDimension(m domain.DailyMetrics) float64 {
	if !m.HasMetric(domain.MetricSteps) {
		return 1.5
	}
	return 3 * math.Min(float64(m.Activity.Steps)/targetDailySteps, 1)
}

// recoveryComponent scores HRV relative to its 7-day baseline: at or
// above baseline is full recovery, half baseline is zero.
func recoveryComponent(m domain.DailyMetrics) float64 {
	if !m.HasMetric(domain.MetricHRV) || m.HRV.SevenDayAvg == 0 {
		return 1.5
	}
	ratio := m.HRV.Score / m.HRV.SevenDayAvg
	return clampScore(3 * (ratio - 0.5) / 0.5)
}

// trendFor fits a line through the recent per-day scores and classifies
// its slope.
func trendFor(series []float64) domain.DimensionTrend {
	if len(series) < 3 {
		return domain.TrendStable
	}

	coords := make([]stats.Coordinate, len(series))
	for i, v := range series {
		coords[i] = stats.Coordinate{X: float64(i), Y: v}
	}

	fitted, err := stats.LinearRegression(coords)
	if err != nil || len(fitted) < 2 {
		return domain.TrendStable
	}

	slope := (fitted[len(fitted)-1].Y - fitted[0].Y) / float64(len(fitted)-1)
	switch {
	case slope > trendSlope:
		return domain.TrendImproving
	case slope < -trendSlope:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(3, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
