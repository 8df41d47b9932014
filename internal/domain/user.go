package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Timezone string    `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`

	// Garmin connection state, maintained by the sync orchestrator.
	GarminConnected bool       `gorm:"not null;default:false" json:"garmin_connected"`
	GarminLastSync  *time.Time `json:"garmin_last_sync,omitempty"`

	// AES-GCM sealed JSON blob holding email/password/displayName.
	// Never serialized into API responses.
	GarminCredentials string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}

// StoreCredentialsRequest is the request body for storing Garmin credentials.
// @Description Garmin Connect credentials, sealed before storage.
type StoreCredentialsRequest struct {
	// Garmin Connect account email
	Email string `json:"email" validate:"required,email" example:"athlete@example.com"`
	// Garmin Connect account password
	Password string `json:"password" validate:"required,min=1"`
	// Optional Garmin display name (opaque account identifier used in API paths)
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=128"`
}

// GarminCredentials is the decrypted shape of the stored credential blob.
type GarminCredentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// UserResponse is the response body for user endpoints
type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Timezone        string     `json:"timezone"`
	GarminConnected bool       `json:"garmin_connected"`
	GarminLastSync  *time.Time `json:"garmin_last_sync,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Timezone:        u.Timezone,
		GarminConnected: u.GarminConnected,
		GarminLastSync:  u.GarminLastSync,
		CreatedAt:       u.CreatedAt,
	}
}
