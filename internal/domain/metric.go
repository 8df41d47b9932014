package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetricType identifies one Garmin data stream.
// @Description Garmin metric type: hrv, sleep, body_battery, steps, or stress.
type MetricType string

const (
	MetricHRV         MetricType = "hrv"
	MetricSleep       MetricType = "sleep"
	MetricBodyBattery MetricType = "body_battery"
	MetricSteps       MetricType = "steps"
	MetricStress      MetricType = "stress"
)

// AllMetricTypes is the fixed fetch order within one sync day.
var AllMetricTypes = []MetricType{
	MetricHRV,
	MetricSleep,
	MetricBodyBattery,
	MetricSteps,
	MetricStress,
}

// RawMetricRecord is one ingested Garmin payload, stored as received.
// Records are append-only: a bulk sync replaces them wholesale, the
// incremental path skips dates that already have one.
type RawMetricRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_raw_user_date_metric;index:idx_raw_user_date" json:"user_id"`
	Date       time.Time      `gorm:"type:date;not null;uniqueIndex:idx_raw_user_date_metric;index:idx_raw_user_date" json:"date"`
	MetricType MetricType     `gorm:"type:varchar(20);not null;uniqueIndex:idx_raw_user_date_metric" json:"metric_type"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Processed  bool           `gorm:"not null;default:false" json:"processed"`
	// Processing errors collected by downstream consumers, if any.
	ProcessingErrors datatypes.JSON `gorm:"type:jsonb" json:"processing_errors,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RawMetricRecord) TableName() string {
	return "raw_metric_records"
}

// DateOnly truncates t to a calendar date in UTC. Raw records and all
// per-day lookups key on this form.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
