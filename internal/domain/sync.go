package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncType distinguishes the two ingestion paths.
type SyncType string

const (
	SyncTypeBulk SyncType = "bulk"
	SyncTypeAuto SyncType = "auto"
)

// SyncStatus is the audit outcome of one sync attempt.
type SyncStatus string

const (
	SyncSuccess        SyncStatus = "success"
	SyncPartialSuccess SyncStatus = "partial_success"
	SyncError          SyncStatus = "error"
)

// SyncLog is one append-only audit record per sync attempt (or per user
// within a batch auto-sync).
type SyncLog struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_sync_logs_user_created" json:"user_id"`
	SyncType         SyncType   `gorm:"type:varchar(10);not null" json:"sync_type"`
	Status           SyncStatus `gorm:"type:varchar(20);not null" json:"status"`
	DataPointsSynced int        `gorm:"not null;default:0" json:"data_points_synced"`
	ErrorMessage     *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index:idx_sync_logs_user_created,sort:desc" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

// DateRange is an inclusive calendar range.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SyncResult is the caller-visible outcome of one sync run. A non-empty
// Errors list means the run is incomplete, not failed; DataPointsSynced
// reports how much did succeed.
type SyncResult struct {
	Success          bool      `json:"success"`
	DataPointsSynced int       `json:"data_points_synced"`
	EmptyResponses   int       `json:"empty_responses"`
	DateRange        DateRange `json:"date_range"`
	Errors           []string  `json:"errors"`
	Message          string    `json:"message"`
}

// AutoSyncSummary aggregates a scheduled multi-user sync pass.
type AutoSyncSummary struct {
	UsersConsidered int      `json:"users_considered"`
	UsersSynced     int      `json:"users_synced"`
	UsersSkipped    int      `json:"users_skipped"`
	UsersFailed     int      `json:"users_failed"`
	Errors          []string `json:"errors"`
}

// TestConnectionResult reports whether stored credentials look usable.
type TestConnectionResult struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message"`
	StoredDataPoints int64      `json:"stored_data_points"`
	LastSyncAt       *time.Time `json:"last_sync_at,omitempty"`
}

// SyncRequest is the request body for triggering a bulk sync.
type SyncRequest struct {
	// Number of weeks of history to fetch, counted back from today
	WeeksPast int `json:"weeks_past" validate:"required,min=1,max=52" example:"4"`
}

// SyncLogResponse is the API shape of one audit record.
type SyncLogResponse struct {
	ID               uuid.UUID  `json:"id"`
	SyncType         SyncType   `json:"sync_type"`
	Status           SyncStatus `json:"status"`
	DataPointsSynced int        `json:"data_points_synced"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (l *SyncLog) ToResponse() SyncLogResponse {
	return SyncLogResponse{
		ID:               l.ID,
		SyncType:         l.SyncType,
		Status:           l.Status,
		DataPointsSynced: l.DataPointsSynced,
		ErrorMessage:     l.ErrorMessage,
		CreatedAt:        l.CreatedAt,
	}
}

// SyncLogListResponse is a cursor-paginated page of audit records.
type SyncLogListResponse struct {
	Data       []SyncLogResponse  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse contains pagination metadata.
// @Description Cursor-based pagination info.
type PaginationResponse struct {
	// Cursor for fetching the next page (empty if no more pages)
	NextCursor string `json:"next_cursor,omitempty"`
	// True if more results are available
	HasMore bool `json:"has_more"`
}

// SyncLogFilter contains filter parameters for listing sync logs.
type SyncLogFilter struct {
	Limit  int
	Cursor string
}
