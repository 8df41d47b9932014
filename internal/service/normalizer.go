package service

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

// Normalize maps a set of raw metric records for one user/date onto the
// canonical daily structure. It is a pure, total function: every
// historically-seen upstream shape is tolerated, unknown shapes fall
// through to zero defaults, and the result is always fully populated.
func Normalize(records []domain.RawMetricRecord) domain.DailyMetrics {
	m := domain.DailyMetrics{
		HRV:   domain.HRVMetrics{Status: domain.HRVBalanced},
		Sleep: domain.SleepMetrics{Quality: domain.SleepFair},
	}

	for _, record := range records {
		payload := gjson.ParseBytes(record.Payload)
		if !payload.IsObject() {
			continue
		}

		switch record.MetricType {
		case domain.MetricHRV:
			m.HRV = normalizeHRV(payload)
		case domain.MetricSleep:
			m.Sleep = normalizeSleep(payload)
		case domain.MetricBodyBattery:
			m.BodyBattery = normalizeBodyBattery(payload)
		case domain.MetricSteps:
			m.Activity = normalizeActivity(payload)
		case domain.MetricStress:
			m.Stress = normalizeStress(payload)
		default:
			continue
		}
		m.SourceMetrics = append(m.SourceMetrics, record.MetricType)
	}

	return m
}

// normalizeHRV accepts the wellness-entry list shape and the flat summary
// shape, in that order.
func normalizeHRV(payload gjson.Result) domain.HRVMetrics {
	var entry gjson.Result

	if wellness := payload.Get("wellnessData"); wellness.IsArray() && len(wellness.Array()) > 0 {
		entry = wellness.Array()[0]
	} else if summary := payload.Get("hrvSummary"); summary.IsObject() {
		entry = summary
	} else {
		entry = payload
	}

	score := entry.Get("lastNightAvg").Float()

	sevenDay := score
	if v := entry.Get("lastNight7DayAvg"); v.Exists() {
		sevenDay = v.Float()
	} else if v := entry.Get("weeklyAvg"); v.Exists() {
		sevenDay = v.Float()
	}

	return domain.HRVMetrics{
		Score:       score,
		SevenDayAvg: sevenDay,
		Status:      mapHRVStatus(entry.Get("status").String()),
		LastNight:   score,
	}
}

// mapHRVStatus folds upstream free-text statuses onto the closed set.
// Unknown or absent statuses default to balanced.
func mapHRVStatus(raw string) domain.HRVStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "balanced", "optimal", "good":
		return domain.HRVBalanced
	case "unbalanced", "poor":
		return domain.HRVUnbalanced
	case "low", "critical":
		return domain.HRVLow
	default:
		return domain.HRVBalanced
	}
}

// normalizeSleep reads the nested daily-sleep object. Upstream reports
// seconds; the canonical unit is minutes.
func normalizeSleep(payload gjson.Result) domain.SleepMetrics {
	daily := payload.Get("dailySleepDTO")
	if !daily.IsObject() {
		return domain.SleepMetrics{Quality: domain.SleepFair}
	}

	result := domain.SleepMetrics{
		Duration:   secondsToMinutes(daily.Get("sleepTimeSeconds").Float()),
		DeepSleep:  secondsToMinutes(daily.Get("deepSleepSeconds").Float()),
		LightSleep: secondsToMinutes(daily.Get("lightSleepSeconds").Float()),
		RemSleep:   secondsToMinutes(daily.Get("remSleepSeconds").Float()),
		Awake:      secondsToMinutes(daily.Get("awakeSleepSeconds").Float()),
	}

	score := daily.Get("sleepScores.overall.value")
	if !score.Exists() {
		score = daily.Get("sleepScore")
	}
	result.Quality = mapSleepQuality(score)

	return result
}

// mapSleepQuality maps the 0-100 sleep score onto the ordinal scale.
// An absent score defaults to fair, not poor.
func mapSleepQuality(score gjson.Result) domain.SleepQuality {
	if !score.Exists() {
		return domain.SleepFair
	}
	switch v := score.Float(); {
	case v >= 80:
		return domain.SleepExcellent
	case v >= 70:
		return domain.SleepGood
	case v >= 50:
		return domain.SleepFair
	default:
		return domain.SleepPoor
	}
}

// normalizeBodyBattery takes explicit start/end/min/max when present,
// otherwise derives the bounds from the level sample array.
func normalizeBodyBattery(payload gjson.Result) domain.BodyBatteryMetrics {
	entry := payload
	if wellness := payload.Get("wellnessData"); wellness.IsArray() && len(wellness.Array()) > 0 {
		entry = wellness.Array()[0]
	}

	result := domain.BodyBatteryMetrics{
		Start:   int(entry.Get("startLevel").Int()),
		End:     int(entry.Get("endLevel").Int()),
		Charged: int(entry.Get("charged").Int()),
		Drained: int(entry.Get("drained").Int()),
	}

	minLevel := entry.Get("minLevel")
	maxLevel := entry.Get("maxLevel")
	if minLevel.Exists() && maxLevel.Exists() {
		result.Min = int(minLevel.Int())
		result.Max = int(maxLevel.Int())
		return result
	}

	// Older shape: only a sample series is present.
	samples := entry.Get("bodyBatteryValuesArray")
	if !samples.IsArray() {
		return result
	}
	first := true
	for _, sample := range samples.Array() {
		level, ok := sampleLevel(sample)
		if !ok {
			continue
		}
		if first || level < result.Min {
			result.Min = level
		}
		if first || level > result.Max {
			result.Max = level
		}
		first = false
	}
	return result
}

// sampleLevel reads one body-battery sample, either a [timestamp, level]
// pair or an object with a level field.
func sampleLevel(sample gjson.Result) (int, bool) {
	if sample.IsArray() {
		pair := sample.Array()
		if len(pair) >= 2 && pair[1].Type == gjson.Number {
			return int(pair[1].Int()), true
		}
		return 0, false
	}
	if level := sample.Get("level"); level.Exists() {
		return int(level.Int()), true
	}
	return 0, false
}

// normalizeActivity prefers the flat shape; the nested daily-movement
// shape reports active time in seconds.
func normalizeActivity(payload gjson.Result) domain.ActivityMetrics {
	if payload.Get("totalSteps").Exists() || payload.Get("steps").Exists() {
		steps := payload.Get("totalSteps")
		if !steps.Exists() {
			steps = payload.Get("steps")
		}
		return domain.ActivityMetrics{
			Steps:         int(steps.Int()),
			Calories:      int(payload.Get("calories").Int()),
			ActiveMinutes: int(payload.Get("activeMinutes").Int()),
		}
	}

	if movement := payload.Get("dailyMovement"); movement.IsObject() {
		return domain.ActivityMetrics{
			Steps:         int(movement.Get("totalSteps").Int()),
			Calories:      int(movement.Get("caloriesBurned").Int()),
			ActiveMinutes: secondsToMinutes(movement.Get("activeTimeSeconds").Float()),
		}
	}

	return domain.ActivityMetrics{}
}

func normalizeStress(payload gjson.Result) domain.StressMetrics {
	entry := payload
	if !payload.Get("avgStressLevel").Exists() {
		if wellness := payload.Get("wellnessData"); wellness.IsArray() && len(wellness.Array()) > 0 {
			entry = wellness.Array()[0]
		}
	}

	return domain.StressMetrics{
		Avg: int(entry.Get("avgStressLevel").Int()),
		Max: int(entry.Get("maxStressLevel").Int()),
		// No upstream shape carries resting periods.
		RestingPeriods: 0,
	}
}

func secondsToMinutes(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(seconds / 60)
}
