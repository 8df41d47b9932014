package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/garmin"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/secrets"
)

type syncFixture struct {
	userRepo    *MockUserRepository
	rawRepo     *MockRawMetricRepository
	syncLogRepo *MockSyncLogRepository
	client      *mockGarminClient
	service     *syncService
	now         time.Time
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		userRepo:    NewMockUserRepository(),
		rawRepo:     NewMockRawMetricRepository(),
		syncLogRepo: NewMockSyncLogRepository(),
		client:      &mockGarminClient{authOK: true},
		now:         time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}

	codec, err := secrets.NewCodec("")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	svc := NewSyncService(f.userRepo, f.rawRepo, f.syncLogRepo, codec, fixedFactory(f.client), SyncConfig{
		FallbackEmail:    "fallback@example.com",
		FallbackPassword: "pw",
	})
	f.service = svc.(*syncService)
	f.service.now = func() time.Time { return f.now }
	f.service.sleep = func(ctx context.Context, d time.Duration) {}
	return f
}

func (f *syncFixture) addUser(t *testing.T, connected bool) *domain.User {
	t.Helper()
	user := &domain.User{ID: uuid.New(), GarminConnected: connected}
	if err := f.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestBulkSync(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newSyncFixture(t)
		_, err := f.service.BulkSync(ctx, uuid.New(), 1)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("BulkSync() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("zero week window rejected", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)
		_, err := f.service.BulkSync(ctx, user.ID, 0)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("BulkSync() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("happy path covers the whole window", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		result, err := f.service.BulkSync(ctx, user.ID, 1)
		if err != nil {
			t.Fatalf("BulkSync() error = %v", err)
		}

		// 8 days (7 back plus today) times 5 metrics.
		if result.DataPointsSynced != 40 {
			t.Errorf("DataPointsSynced = %d, want 40", result.DataPointsSynced)
		}
		if !result.Success || len(result.Errors) != 0 {
			t.Errorf("result = %+v, want clean success", result)
		}
		wantFrom := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
		if !result.DateRange.From.Equal(wantFrom) {
			t.Errorf("DateRange.From = %v, want %v", result.DateRange.From, wantFrom)
		}

		updated, _ := f.userRepo.GetByID(ctx, user.ID)
		if !updated.GarminConnected || updated.GarminLastSync == nil {
			t.Errorf("sync state not updated: %+v", updated)
		}

		entry, err := f.syncLogRepo.LatestByUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("LatestByUser: %v", err)
		}
		if entry.SyncType != domain.SyncTypeBulk || entry.Status != domain.SyncSuccess || entry.DataPointsSynced != 40 {
			t.Errorf("sync log = %+v, want bulk success with 40 points", entry)
		}
	})

	t.Run("replays delete before refetch", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		if _, err := f.service.BulkSync(ctx, user.ID, 1); err != nil {
			t.Fatalf("first BulkSync() error = %v", err)
		}
		if _, err := f.service.BulkSync(ctx, user.ID, 1); err != nil {
			t.Fatalf("second BulkSync() error = %v", err)
		}

		if f.rawRepo.deletes != 2 {
			t.Errorf("deletes = %d, want one per run", f.rawRepo.deletes)
		}
		count, _ := f.rawRepo.CountByUser(ctx, user.ID)
		if count != 40 {
			t.Errorf("CountByUser = %d after replay, want 40 (no duplicates)", count)
		}
	})

	t.Run("auth transport error", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)
		f.client.authErr = errors.New("connection reset")

		_, err := f.service.BulkSync(ctx, user.ID, 1)
		if !errors.Is(err, domain.ErrAuthFailed) {
			t.Fatalf("BulkSync() error = %v, want ErrAuthFailed", err)
		}
		entry, _ := f.syncLogRepo.LatestByUser(ctx, user.ID)
		if entry == nil || entry.Status != domain.SyncError {
			t.Errorf("sync log = %+v, want error entry", entry)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)
		f.client.authOK = false

		_, err := f.service.BulkSync(ctx, user.ID, 1)
		if !errors.Is(err, domain.ErrAuthFailed) {
			t.Fatalf("BulkSync() error = %v, want ErrAuthFailed", err)
		}
		if f.rawRepo.deletes != 0 {
			t.Error("records were deleted before authentication succeeded")
		}
	})

	t.Run("per unit errors are isolated and formatted", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)
		f.client.fetch = func(date time.Time, metric domain.MetricType) garmin.FetchResult {
			switch metric {
			case domain.MetricSleep:
				return garmin.FetchResult{Err: "HTTP 500"}
			case domain.MetricStress:
				return garmin.FetchResult{Success: true, IsEmpty: true}
			default:
				return garmin.FetchResult{Success: true, Data: []byte(`{"totalSteps":1}`)}
			}
		}

		result, err := f.service.BulkSync(ctx, user.ID, 1)
		if err != nil {
			t.Fatalf("BulkSync() error = %v", err)
		}

		// 8 days: 3 stored, 1 empty, 1 failed per day.
		if result.DataPointsSynced != 24 {
			t.Errorf("DataPointsSynced = %d, want 24", result.DataPointsSynced)
		}
		if result.EmptyResponses != 8 {
			t.Errorf("EmptyResponses = %d, want 8", result.EmptyResponses)
		}
		if len(result.Errors) != 8 {
			t.Fatalf("got %d errors, want 8: %v", len(result.Errors), result.Errors)
		}
		if want := "2026-08-22/sleep: HTTP 500"; result.Errors[0] != want {
			t.Errorf("Errors[0] = %q, want %q", result.Errors[0], want)
		}
		if !result.Success {
			t.Error("partial failure must still report Success = true")
		}

		entry, _ := f.syncLogRepo.LatestByUser(ctx, user.ID)
		if entry.Status != domain.SyncPartialSuccess {
			t.Errorf("sync log status = %s, want partial_success", entry.Status)
		}
		if entry.ErrorMessage == nil || !strings.Contains(*entry.ErrorMessage, "; ") {
			t.Errorf("ErrorMessage = %v, want joined error list", entry.ErrorMessage)
		}
	})

	t.Run("all fetches failing logs error status", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)
		f.client.fetch = func(time.Time, domain.MetricType) garmin.FetchResult {
			return garmin.FetchResult{Err: "HTTP 503"}
		}

		result, err := f.service.BulkSync(ctx, user.ID, 1)
		if err != nil {
			t.Fatalf("BulkSync() error = %v", err)
		}
		if result.DataPointsSynced != 0 || len(result.Errors) != 40 {
			t.Errorf("result = %+v, want 0 points and 40 errors", result)
		}

		entry, _ := f.syncLogRepo.LatestByUser(ctx, user.ID)
		if entry.Status != domain.SyncError {
			t.Errorf("sync log status = %s, want error", entry.Status)
		}
	})

	t.Run("cancelled context stops the date loop", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		cancelled, cancel := context.WithCancel(ctx)
		fetches := 0
		f.client.fetch = func(time.Time, domain.MetricType) garmin.FetchResult {
			fetches++
			if fetches == 5 {
				cancel()
			}
			return garmin.FetchResult{Success: true, Data: []byte(`{"totalSteps":1}`)}
		}

		result, err := f.service.BulkSync(cancelled, user.ID, 4)
		if err != nil {
			t.Fatalf("BulkSync() error = %v", err)
		}
		// The first day completes, then the loop notices cancellation.
		if fetches != 5 {
			t.Errorf("fetches = %d, want 5", fetches)
		}
		found := false
		for _, msg := range result.Errors {
			if strings.Contains(msg, "cancelled") {
				found = true
			}
		}
		if !found {
			t.Errorf("Errors = %v, want a cancellation entry", result.Errors)
		}
	})

	t.Run("no credentials anywhere", func(t *testing.T) {
		f := newSyncFixture(t)
		f.service.cfg.FallbackEmail = ""
		f.service.cfg.FallbackPassword = ""
		user := f.addUser(t, true)

		_, err := f.service.BulkSync(ctx, user.ID, 1)
		if !errors.Is(err, domain.ErrCredentialsMissing) {
			t.Fatalf("BulkSync() error = %v, want ErrCredentialsMissing", err)
		}
	})

	t.Run("sealed credentials are preferred over fallback", func(t *testing.T) {
		f := newSyncFixture(t)
		key := strings.Repeat("ab", 32)
		codec, err := secrets.NewCodec(key)
		if err != nil {
			t.Fatalf("NewCodec: %v", err)
		}
		f.service.codec = codec

		user := f.addUser(t, true)
		blob, err := codec.Seal(domain.GarminCredentials{
			Email:       "stored@example.com",
			Password:    "stored-pw",
			DisplayName: "athlete-9",
		})
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		if err := f.userRepo.StoreCredentials(ctx, user.ID, blob); err != nil {
			t.Fatalf("StoreCredentials: %v", err)
		}

		stored, _ := f.userRepo.GetByID(ctx, user.ID)
		creds, err := f.service.resolveCredentials(stored)
		if err != nil {
			t.Fatalf("resolveCredentials: %v", err)
		}
		if creds.Email != "stored@example.com" || creds.DisplayName != "athlete-9" {
			t.Errorf("resolved %+v, want stored credentials", creds)
		}
	})
}

func TestAutoSyncAll(t *testing.T) {
	ctx := context.Background()

	t.Run("stale users sync, fresh users skip", func(t *testing.T) {
		f := newSyncFixture(t)
		stale := f.addUser(t, true)
		staleTS := f.now.Add(-3 * time.Hour)
		f.userRepo.users[stale.ID].GarminLastSync = &staleTS

		fresh := f.addUser(t, true)
		freshTS := f.now.Add(-30 * time.Minute)
		f.userRepo.users[fresh.ID].GarminLastSync = &freshTS

		f.addUser(t, false) // disconnected, never considered

		summary, err := f.service.AutoSyncAll(ctx)
		if err != nil {
			t.Fatalf("AutoSyncAll() error = %v", err)
		}
		if summary.UsersConsidered != 2 || summary.UsersSynced != 1 || summary.UsersSkipped != 1 || summary.UsersFailed != 0 {
			t.Errorf("summary = %+v, want 2 considered / 1 synced / 1 skipped", summary)
		}

		// Yesterday and today, 5 metrics each.
		count, _ := f.rawRepo.CountByUser(ctx, stale.ID)
		if count != 10 {
			t.Errorf("stale user has %d records, want 10", count)
		}
		freshCount, _ := f.rawRepo.CountByUser(ctx, fresh.ID)
		if freshCount != 0 {
			t.Errorf("fresh user has %d records, want 0", freshCount)
		}
	})

	t.Run("existing dates are never refetched", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		today := domain.DateOnly(f.now)
		existing := domain.RawMetricRecord{
			UserID:     user.ID,
			Date:       today,
			MetricType: domain.MetricSteps,
			Payload:    []byte(`{"totalSteps":5}`),
		}
		if err := f.rawRepo.Create(ctx, &existing); err != nil {
			t.Fatalf("seed record: %v", err)
		}

		summary, err := f.service.AutoSyncAll(ctx)
		if err != nil {
			t.Fatalf("AutoSyncAll() error = %v", err)
		}
		if summary.UsersSynced != 1 {
			t.Fatalf("summary = %+v, want 1 synced", summary)
		}

		for _, fetched := range f.client.fetched {
			if strings.HasPrefix(fetched, today.Format("2006-01-02")) {
				t.Errorf("fetched %s although the date already has records", fetched)
			}
		}
		// Only yesterday was fetched: 1 existing + 5 new.
		count, _ := f.rawRepo.CountByUser(ctx, user.ID)
		if count != 6 {
			t.Errorf("CountByUser = %d, want 6", count)
		}
	})

	t.Run("both dates present refreshes staleness clock without auth", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		today := domain.DateOnly(f.now)
		for _, date := range []time.Time{today.AddDate(0, 0, -1), today} {
			record := domain.RawMetricRecord{
				UserID:     user.ID,
				Date:       date,
				MetricType: domain.MetricSteps,
				Payload:    []byte(`{"totalSteps":5}`),
			}
			if err := f.rawRepo.Create(ctx, &record); err != nil {
				t.Fatalf("seed record: %v", err)
			}
		}

		summary, err := f.service.AutoSyncAll(ctx)
		if err != nil {
			t.Fatalf("AutoSyncAll() error = %v", err)
		}
		if summary.UsersSynced != 1 {
			t.Errorf("summary = %+v, want 1 synced", summary)
		}
		if f.client.authCalls != 0 {
			t.Errorf("authCalls = %d, want 0 when nothing needs fetching", f.client.authCalls)
		}
		updated, _ := f.userRepo.GetByID(ctx, user.ID)
		if updated.GarminLastSync == nil || !updated.GarminLastSync.Equal(f.now) {
			t.Errorf("GarminLastSync = %v, want refreshed to %v", updated.GarminLastSync, f.now)
		}
	})

	t.Run("one failing user does not abort the batch", func(t *testing.T) {
		f := newSyncFixture(t)
		f.addUser(t, true)
		f.addUser(t, true)
		f.client.authOK = false

		summary, err := f.service.AutoSyncAll(ctx)
		if err != nil {
			t.Fatalf("AutoSyncAll() error = %v", err)
		}
		if summary.UsersFailed != 2 || len(summary.Errors) != 2 {
			t.Errorf("summary = %+v, want both users failed with errors recorded", summary)
		}
	})
}

func TestTestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback credentials look valid", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		result, err := f.service.TestConnection(ctx, user.ID)
		if err != nil {
			t.Fatalf("TestConnection() error = %v", err)
		}
		if !result.Success {
			t.Errorf("result = %+v, want success", result)
		}
		if result.StoredDataPoints != 0 || result.LastSyncAt != nil {
			t.Errorf("result = %+v, want no stored data before first sync", result)
		}
	})

	t.Run("reports stored data and last sync", func(t *testing.T) {
		f := newSyncFixture(t)
		user := f.addUser(t, true)

		if _, err := f.service.BulkSync(ctx, user.ID, 1); err != nil {
			t.Fatalf("BulkSync() error = %v", err)
		}

		result, err := f.service.TestConnection(ctx, user.ID)
		if err != nil {
			t.Fatalf("TestConnection() error = %v", err)
		}
		if result.StoredDataPoints != 40 {
			t.Errorf("StoredDataPoints = %d, want 40", result.StoredDataPoints)
		}
		if result.LastSyncAt == nil {
			t.Error("LastSyncAt = nil, want timestamp of the bulk sync log")
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		f := newSyncFixture(t)
		f.service.cfg.FallbackEmail = ""
		f.service.cfg.FallbackPassword = ""
		user := f.addUser(t, true)

		result, err := f.service.TestConnection(ctx, user.ID)
		if err != nil {
			t.Fatalf("TestConnection() error = %v", err)
		}
		if result.Success {
			t.Errorf("result = %+v, want failure", result)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		f := newSyncFixture(t)
		f.service.cfg.FallbackEmail = "not-an-email"
		user := f.addUser(t, true)

		result, err := f.service.TestConnection(ctx, user.ID)
		if err != nil {
			t.Fatalf("TestConnection() error = %v", err)
		}
		if result.Success {
			t.Errorf("result = %+v, want failure for malformed email", result)
		}
	})
}

func TestAvailableDataDates(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)

	if _, err := f.service.AvailableDataDates(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("AvailableDataDates() error = %v, want ErrNotFound", err)
	}

	user := f.addUser(t, true)
	for _, d := range []string{"2026-08-20", "2026-08-21"} {
		date, _ := time.Parse("2006-01-02", d)
		for _, metric := range []domain.MetricType{domain.MetricSteps, domain.MetricHRV} {
			record := domain.RawMetricRecord{UserID: user.ID, Date: date, MetricType: metric, Payload: []byte(`{"totalSteps":1}`)}
			if err := f.rawRepo.Create(ctx, &record); err != nil {
				t.Fatalf("seed record: %v", err)
			}
		}
	}

	dates, err := f.service.AvailableDataDates(ctx, user.ID)
	if err != nil {
		t.Fatalf("AvailableDataDates() error = %v", err)
	}
	if len(dates) != 2 {
		t.Errorf("got %d dates, want 2 distinct: %v", len(dates), dates)
	}
}

func TestListSyncLogs(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	user := f.addUser(t, true)

	if _, err := f.service.ListSyncLogs(ctx, uuid.New(), domain.SyncLogFilter{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ListSyncLogs() error = %v, want ErrNotFound", err)
	}

	for i := 0; i < 5; i++ {
		entry := domain.SyncLog{
			UserID:           user.ID,
			SyncType:         domain.SyncTypeBulk,
			Status:           domain.SyncSuccess,
			DataPointsSynced: i,
			CreatedAt:        f.now.Add(time.Duration(i) * time.Minute),
		}
		if err := f.syncLogRepo.Create(ctx, &entry); err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	t.Run("page smaller than total reports more", func(t *testing.T) {
		page, err := f.service.ListSyncLogs(ctx, user.ID, domain.SyncLogFilter{Limit: 3})
		if err != nil {
			t.Fatalf("ListSyncLogs() error = %v", err)
		}
		if len(page.Data) != 3 {
			t.Fatalf("got %d entries, want 3", len(page.Data))
		}
		if !page.Pagination.HasMore || page.Pagination.NextCursor == "" {
			t.Errorf("pagination = %+v, want has_more with cursor", page.Pagination)
		}
		// Newest first.
		if page.Data[0].DataPointsSynced != 4 {
			t.Errorf("Data[0].DataPointsSynced = %d, want 4 (newest)", page.Data[0].DataPointsSynced)
		}
	})

	t.Run("full page has no cursor", func(t *testing.T) {
		page, err := f.service.ListSyncLogs(ctx, user.ID, domain.SyncLogFilter{Limit: 10})
		if err != nil {
			t.Fatalf("ListSyncLogs() error = %v", err)
		}
		if len(page.Data) != 5 {
			t.Fatalf("got %d entries, want 5", len(page.Data))
		}
		if page.Pagination.HasMore || page.Pagination.NextCursor != "" {
			t.Errorf("pagination = %+v, want final page", page.Pagination)
		}
	})
}
