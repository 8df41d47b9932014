package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

const seededDays = 21

// Run seeds the database with sample users and raw Garmin payloads.
// Safe to call multiple times.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.RawMetricRecord{}, &domain.SyncLog{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	users := []domain.User{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Timezone: "Europe/Zurich", GarminConnected: true},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Timezone: "America/New_York", GarminConnected: true},
		{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Timezone: "Asia/Tokyo"},
	}

	for _, user := range users {
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.ID, err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, user := range users {
		if !user.GarminConnected {
			continue
		}
		if err := seedRawMetricsForUser(db, user, rng); err != nil {
			return err
		}
	}

	log.Println("Seed completed")
	return nil
}

func seedRawMetricsForUser(db *gorm.DB, user domain.User, rng *rand.Rand) error {
	now := time.Now().UTC()
	for i := 0; i < seededDays; i++ {
		date := domain.DateOnly(now.AddDate(0, 0, -i))
		dateStr := date.Format("2006-01-02")

		payloads := map[domain.MetricType]string{
			domain.MetricHRV: fmt.Sprintf(
				`{"wellnessData":[{"calendarDate":%q,"lastNightAvg":%d,"lastNight7DayAvg":%d,"status":%q}]}`,
				dateStr, 35+rng.Intn(40), 40+rng.Intn(30), hrvStatusSample(rng)),
			domain.MetricSleep: fmt.Sprintf(
				`{"dailySleepDTO":{"calendarDate":%q,"sleepTimeSeconds":%d,"deepSleepSeconds":%d,"remSleepSeconds":%d,"lightSleepSeconds":%d,"awakeSleepSeconds":%d,"sleepScores":{"overall":{"value":%d}}}}`,
				dateStr, 21600+rng.Intn(10800), 3600+rng.Intn(3600), 4500+rng.Intn(2700), 10800+rng.Intn(5400), rng.Intn(1800), 55+rng.Intn(40)),
			domain.MetricBodyBattery: fmt.Sprintf(
				`{"wellnessData":[{"calendarDate":%q,"startLevel":%d,"endLevel":%d,"minLevel":%d,"maxLevel":%d,"charged":%d,"drained":%d}]}`,
				dateStr, 60+rng.Intn(35), 15+rng.Intn(50), 10+rng.Intn(20), 70+rng.Intn(30), 30+rng.Intn(40), 40+rng.Intn(40)),
			domain.MetricSteps: fmt.Sprintf(
				`{"totalSteps":%d,"activeTimeSeconds":%d,"totalDistanceMeters":%d}`,
				4000+rng.Intn(9000), 1800+rng.Intn(5400), 3000+rng.Intn(7000)),
			domain.MetricStress: fmt.Sprintf(
				`{"avgStressLevel":%d,"maxStressLevel":%d,"calendarDate":%q}`,
				20+rng.Intn(40), 60+rng.Intn(35), dateStr),
		}

		for metric, payload := range payloads {
			record := domain.RawMetricRecord{
				UserID:     user.ID,
				Date:       date,
				MetricType: metric,
				Payload:    datatypes.JSON(payload),
				Processed:  true,
			}
			err := db.Where("user_id = ? AND date = ? AND metric_type = ?", user.ID, date, metric).
				FirstOrCreate(&record).Error
			if err != nil {
				return fmt.Errorf("failed to create raw %s record: %w", metric, err)
			}
		}
	}
	return nil
}

func hrvStatusSample(rng *rand.Rand) string {
	statuses := []string{"BALANCED", "BALANCED", "UNBALANCED", "LOW"}
	return statuses[rng.Intn(len(statuses))]
}
