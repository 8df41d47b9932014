package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// ListConnected returns every user flagged as Garmin-connected.
	ListConnected(ctx context.Context) ([]domain.User, error)
	// UpdateSyncState records the outcome of a sync run on the profile.
	UpdateSyncState(ctx context.Context, id uuid.UUID, connected bool, lastSync time.Time) error
	// StoreCredentials persists the sealed credential blob and marks the
	// user connected.
	StoreCredentials(ctx context.Context, id uuid.UUID, blob string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ListConnected(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("garmin_connected = ?", true).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) UpdateSyncState(ctx context.Context, id uuid.UUID, connected bool, lastSync time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"garmin_connected": connected,
			"garmin_last_sync": lastSync,
		}).Error
}

func (r *userRepository) StoreCredentials(ctx context.Context, id uuid.UUID, blob string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"garmin_credentials": blob,
			"garmin_connected":   true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
