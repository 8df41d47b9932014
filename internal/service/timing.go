package service

import (
	"time"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

// ApplyTiming annotates normalized metrics with the recovery-lag rule:
// the HRV reading recorded for date D physiologically reflects recovery
// from date D-1. CanValidatePatterns gates rules that reason about
// next-day outcomes; a date still in the future cannot be validated.
//
// Must run before pattern detection, which assumes ReflectsDate is set.
func ApplyTiming(m domain.DailyMetrics, date, now time.Time) domain.DailyMetrics {
	day := domain.DateOnly(date)
	m.HRV.MeasurementDate = day
	m.HRV.ReflectsDate = day.AddDate(0, 0, -1)
	m.CanValidatePatterns = day.Before(now)
	return m
}
