package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/garmin"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/secrets"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/pkg/pagination"
)

const (
	// DefaultRequestDelay spaces per-metric fetches to respect the
	// upstream service's implicit rate limits.
	DefaultRequestDelay = 150 * time.Millisecond

	// AutoSyncStaleness is how old a last-sync timestamp must be before
	// the scheduled pass touches the user again.
	AutoSyncStaleness = 2 * time.Hour
)

// ClientFactory builds one Garmin client per sync run. Sessions are
// never shared across runs.
type ClientFactory func(cfg garmin.Config) garmin.Client

// SyncConfig tunes the orchestrator.
type SyncConfig struct {
	SSOBaseURL   string
	APIBaseURL   string
	RequestDelay time.Duration
	MaxAttempts  int

	// Service-level credential fallback for users without a stored blob,
	// used primarily by the scheduled auto-sync.
	FallbackEmail    string
	FallbackPassword string
}

// SyncService drives Garmin ingestion for one user or for the whole
// connected population.
type SyncService interface {
	// BulkSync re-fetches [today - weeksPast*7, today] inclusive after
	// clearing the user's raw records (full-replace idempotency). A
	// non-empty Errors list in the result means incomplete, not failed.
	BulkSync(ctx context.Context, userID uuid.UUID, weeksPast int) (*domain.SyncResult, error)
	// AutoSyncAll syncs yesterday and today for every stale connected
	// user, skipping dates that already have records. One user's failure
	// never aborts the batch.
	AutoSyncAll(ctx context.Context) (*domain.AutoSyncSummary, error)
	// TestConnection checks that stored credentials are well-formed.
	// It does not perform a Garmin login round-trip.
	TestConnection(ctx context.Context, userID uuid.UUID) (*domain.TestConnectionResult, error)
	// AvailableDataDates lists distinct dates with raw data, newest first.
	AvailableDataDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	// ListSyncLogs returns the audit trail, newest first, cursor-paginated.
	ListSyncLogs(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) (*domain.SyncLogListResponse, error)
}

type syncService struct {
	userRepo    repository.UserRepository
	rawRepo     repository.RawMetricRepository
	syncLogRepo repository.SyncLogRepository
	codec       *secrets.Codec
	newClient   ClientFactory
	cfg         SyncConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	userRepo repository.UserRepository,
	rawRepo repository.RawMetricRepository,
	syncLogRepo repository.SyncLogRepository,
	codec *secrets.Codec,
	newClient ClientFactory,
	cfg SyncConfig,
) SyncService {
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = DefaultRequestDelay
	}
	if newClient == nil {
		newClient = garmin.NewClient
	}
	return &syncService{
		userRepo:    userRepo,
		rawRepo:     rawRepo,
		syncLogRepo: syncLogRepo,
		codec:       codec,
		newClient:   newClient,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
		sleep:       sleepCtx,
	}
}

func (s *syncService) BulkSync(ctx context.Context, userID uuid.UUID, weeksPast int) (*domain.SyncResult, error) {
	tracer := otel.Tracer("gaf-insight-engine/sync")
	ctx, span := tracer.Start(ctx, "SyncService.BulkSync",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.Int("sync.weeks_past", weeksPast),
		),
	)
	defer span.End()

	if weeksPast < 1 {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	creds, err := s.resolveCredentials(user)
	if err != nil {
		return nil, err
	}

	client := s.newClient(garmin.Config{
		SSOBaseURL:  s.cfg.SSOBaseURL,
		APIBaseURL:  s.cfg.APIBaseURL,
		DisplayName: creds.DisplayName,
		MaxAttempts: s.cfg.MaxAttempts,
	})

	ok, err := client.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		s.writeSyncLog(ctx, userID, domain.SyncTypeBulk, domain.SyncError, 0, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	if !ok {
		s.writeSyncLog(ctx, userID, domain.SyncTypeBulk, domain.SyncError, 0, "credentials rejected")
		return nil, domain.ErrAuthFailed
	}

	// Full-replace semantics: clear everything before re-fetching. This
	// makes bulk sync replay-safe at the cost of being non-incremental.
	if err := s.rawRepo.DeleteByUser(ctx, userID); err != nil {
		s.writeSyncLog(ctx, userID, domain.SyncTypeBulk, domain.SyncError, 0, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	today := domain.DateOnly(s.now())
	from := today.AddDate(0, 0, -weeksPast*7)
	result := &domain.SyncResult{
		DateRange: domain.DateRange{From: from, To: today},
		Errors:    []string{},
	}

	// Chronological order, fixed metric order within each day.
	for date := from; !date.After(today); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("sync cancelled: %v", err))
			break
		}
		s.syncDay(ctx, client, userID, date, result)
	}

	now := s.now()
	if err := s.userRepo.UpdateSyncState(ctx, userID, true, now); err != nil {
		log.Printf("sync: failed to update sync state for user %s: %v", userID, err)
	}

	status := syncStatus(result)
	result.Success = true
	result.Message = fmt.Sprintf("Synced %d data points (%d empty responses) between %s and %s",
		result.DataPointsSynced, result.EmptyResponses,
		from.Format("2006-01-02"), today.Format("2006-01-02"))

	s.writeSyncLog(ctx, userID, domain.SyncTypeBulk, status, result.DataPointsSynced, strings.Join(result.Errors, "; "))

	span.SetAttributes(
		attribute.Int("sync.data_points", result.DataPointsSynced),
		attribute.Int("sync.empty_responses", result.EmptyResponses),
		attribute.Int("sync.errors", len(result.Errors)),
	)

	return result, nil
}

// syncDay fetches all metric types for one date with per-unit error
// isolation: a single failure is recorded and the loop continues.
func (s *syncService) syncDay(ctx context.Context, client garmin.Client, userID uuid.UUID, date time.Time, result *domain.SyncResult) {
	day := date.Format("2006-01-02")

	for i, metric := range domain.AllMetricTypes {
		if i > 0 {
			s.sleep(ctx, s.cfg.RequestDelay)
		}

		res := client.FetchData(ctx, date, metric)
		switch {
		case res.Err != "":
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %s", day, metric, res.Err))
		case res.IsEmpty:
			result.EmptyResponses++
		default:
			record := &domain.RawMetricRecord{
				UserID:     userID,
				Date:       date,
				MetricType: metric,
				Payload:    datatypes.JSON(res.Data),
			}
			if err := s.rawRepo.Create(ctx, record); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", day, metric, err))
			} else {
				result.DataPointsSynced++
			}
		}
	}
}

func (s *syncService) AutoSyncAll(ctx context.Context) (*domain.AutoSyncSummary, error) {
	users, err := s.userRepo.ListConnected(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	summary := &domain.AutoSyncSummary{
		UsersConsidered: len(users),
		Errors:          []string{},
	}
	now := s.now()

	// Sequential on purpose: keeps upstream rate limits respected and
	// error attribution simple.
	for i := range users {
		user := users[i]

		if user.GarminLastSync != nil && now.Sub(*user.GarminLastSync) < AutoSyncStaleness {
			summary.UsersSkipped++
			continue
		}

		if err := s.autoSyncUser(ctx, &user); err != nil {
			summary.UsersFailed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("user %s: %v", user.ID, err))
			log.Printf("auto-sync: user %s failed: %v", user.ID, err)
			continue
		}
		summary.UsersSynced++
	}

	return summary, nil
}

// autoSyncUser syncs yesterday and today only, skipping any date that
// already has raw records (incremental idempotency via existence check).
func (s *syncService) autoSyncUser(ctx context.Context, user *domain.User) error {
	creds, err := s.resolveCredentials(user)
	if err != nil {
		return err
	}

	today := domain.DateOnly(s.now())
	dates := make([]time.Time, 0, 2)
	for _, d := range []time.Time{today.AddDate(0, 0, -1), today} {
		exists, err := s.rawRepo.ExistsForDate(ctx, user.ID, d)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		if !exists {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		// Nothing to fetch; still refresh the staleness clock.
		return s.userRepo.UpdateSyncState(ctx, user.ID, true, s.now())
	}

	client := s.newClient(garmin.Config{
		SSOBaseURL:  s.cfg.SSOBaseURL,
		APIBaseURL:  s.cfg.APIBaseURL,
		DisplayName: creds.DisplayName,
		MaxAttempts: s.cfg.MaxAttempts,
	})

	ok, err := client.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		s.writeSyncLog(ctx, user.ID, domain.SyncTypeAuto, domain.SyncError, 0, err.Error())
		return fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	if !ok {
		s.writeSyncLog(ctx, user.ID, domain.SyncTypeAuto, domain.SyncError, 0, "credentials rejected")
		return domain.ErrAuthFailed
	}

	result := &domain.SyncResult{Errors: []string{}}
	for _, date := range dates {
		s.syncDay(ctx, client, user.ID, date, result)
	}

	if err := s.userRepo.UpdateSyncState(ctx, user.ID, true, s.now()); err != nil {
		log.Printf("auto-sync: failed to update sync state for user %s: %v", user.ID, err)
	}

	s.writeSyncLog(ctx, user.ID, domain.SyncTypeAuto, syncStatus(result), result.DataPointsSynced, strings.Join(result.Errors, "; "))
	return nil
}

func (s *syncService) TestConnection(ctx context.Context, userID uuid.UUID) (*domain.TestConnectionResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	creds, err := s.resolveCredentials(user)
	if err != nil {
		return &domain.TestConnectionResult{
			Success: false,
			Message: "No Garmin credentials configured",
		}, nil
	}

	if !strings.Contains(creds.Email, "@") || creds.Password == "" {
		return &domain.TestConnectionResult{
			Success: false,
			Message: "Stored Garmin credentials are malformed",
		}, nil
	}

	count, err := s.rawRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	result := &domain.TestConnectionResult{
		Success:          true,
		Message:          fmt.Sprintf("Credentials for %s look valid", creds.Email),
		StoredDataPoints: count,
	}
	if last, err := s.syncLogRepo.LatestByUser(ctx, userID); err == nil {
		result.LastSyncAt = &last.CreatedAt
	}
	return result, nil
}

func (s *syncService) AvailableDataDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return s.rawRepo.ListDates(ctx, userID)
}

func (s *syncService) ListSyncLogs(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) (*domain.SyncLogListResponse, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	entries, err := s.syncLogRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	response := &domain.SyncLogListResponse{
		Data: make([]domain.SyncLogResponse, len(entries)),
		Pagination: domain.PaginationResponse{
			HasMore: hasMore,
		},
	}
	for i := range entries {
		response.Data[i] = entries[i].ToResponse()
	}

	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		cursor := &pagination.Cursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		}
		response.Pagination.NextCursor = cursor.Encode()
	}

	return response, nil
}

// resolveCredentials opens the user's sealed blob, falling back to the
// service-level account when no blob is stored.
func (s *syncService) resolveCredentials(user *domain.User) (domain.GarminCredentials, error) {
	if user.GarminCredentials != "" && s.codec != nil && s.codec.Enabled() {
		creds, err := s.codec.Open(user.GarminCredentials)
		if err == nil && creds.Email != "" {
			if creds.DisplayName == "" {
				creds.DisplayName = garmin.FallbackDisplayName
			}
			return creds, nil
		}
		if err != nil {
			log.Printf("sync: cannot open credential blob for user %s: %v", user.ID, err)
		}
	}

	if s.cfg.FallbackEmail != "" && s.cfg.FallbackPassword != "" {
		return domain.GarminCredentials{
			Email:       s.cfg.FallbackEmail,
			Password:    s.cfg.FallbackPassword,
			DisplayName: garmin.FallbackDisplayName,
		}, nil
	}

	return domain.GarminCredentials{}, domain.ErrCredentialsMissing
}

// syncStatus classifies a finished run: clean is success, partially
// synced with errors is partial_success, all-failed is error. Empty
// responses never count against the status.
func syncStatus(result *domain.SyncResult) domain.SyncStatus {
	switch {
	case len(result.Errors) == 0:
		return domain.SyncSuccess
	case result.DataPointsSynced > 0:
		return domain.SyncPartialSuccess
	default:
		return domain.SyncError
	}
}

func (s *syncService) writeSyncLog(ctx context.Context, userID uuid.UUID, syncType domain.SyncType, status domain.SyncStatus, points int, errMsg string) {
	entry := &domain.SyncLog{
		UserID:           userID,
		SyncType:         syncType,
		Status:           status,
		DataPointsSynced: points,
	}
	if errMsg != "" {
		entry.ErrorMessage = &errMsg
	}
	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		log.Printf("sync: failed to write sync log for user %s: %v", userID, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
