package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/pkg/pagination"
)

type SyncLogRepository interface {
	Create(ctx context.Context, entry *domain.SyncLog) error
	List(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) ([]domain.SyncLog, error)
	// LatestByUser returns the most recent audit entry or ErrNotFound.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.SyncLog, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Create(ctx context.Context, entry *domain.SyncLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *syncLogRepository) List(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) ([]domain.SyncLog, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if filter.Cursor != "" {
		cursor, err := pagination.DecodeCursor(filter.Cursor)
		if err == nil && cursor != nil {
			// DESC order: continue below the cursor position.
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}

	// Fetch one extra to determine if there are more results
	limit := pagination.NormalizeLimit(filter.Limit)
	query = query.Limit(limit + 1)

	var entries []domain.SyncLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *syncLogRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.SyncLog, error) {
	var entry domain.SyncLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}
