package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

type RawMetricRepository interface {
	Create(ctx context.Context, record *domain.RawMetricRecord) error
	// DeleteByUser clears every record for a user; the bulk sync path
	// calls this before re-fetching (full-replace idempotency).
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.RawMetricRecord, error)
	// ExistsForDate backs the incremental auto-sync skip check.
	ExistsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)
	// ListDates returns distinct dates with data, newest first.
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type rawMetricRepository struct {
	db *gorm.DB
}

func NewRawMetricRepository(db *gorm.DB) RawMetricRepository {
	return &rawMetricRepository{db: db}
}

func (r *rawMetricRepository) Create(ctx context.Context, record *domain.RawMetricRecord) error {
	record.Date = domain.DateOnly(record.Date)
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *rawMetricRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.RawMetricRecord{}).Error
}

func (r *rawMetricRepository) ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.RawMetricRecord, error) {
	var records []domain.RawMetricRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, domain.DateOnly(date)).
		Find(&records).Error
	return records, err
}

func (r *rawMetricRepository) ExistsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.RawMetricRecord{}).
		Where("user_id = ? AND date = ?", userID, domain.DateOnly(date)).
		Count(&count).Error
	return count > 0, err
}

func (r *rawMetricRepository) ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&domain.RawMetricRecord{}).
		Where("user_id = ?", userID).
		Distinct("date").
		Order("date DESC").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *rawMetricRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.RawMetricRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
