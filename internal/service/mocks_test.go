package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/garmin"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[uuid.UUID]*domain.User
	err   error

	syncStateUpdates int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := m.users[user.ID]; ok {
		return domain.ErrConflict
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *MockUserRepository) ListConnected(ctx context.Context) ([]domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.User
	for _, user := range m.users {
		if user.GarminConnected {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (m *MockUserRepository) UpdateSyncState(ctx context.Context, id uuid.UUID, connected bool, lastSync time.Time) error {
	if m.err != nil {
		return m.err
	}
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.GarminConnected = connected
	ts := lastSync
	user.GarminLastSync = &ts
	m.syncStateUpdates++
	return nil
}

func (m *MockUserRepository) StoreCredentials(ctx context.Context, id uuid.UUID, blob string) error {
	if m.err != nil {
		return m.err
	}
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.GarminCredentials = blob
	user.GarminConnected = true
	return nil
}

// MockRawMetricRepository is a mock implementation of RawMetricRepository
type MockRawMetricRepository struct {
	records []domain.RawMetricRecord
	err     error

	deletes int
}

func NewMockRawMetricRepository() *MockRawMetricRepository {
	return &MockRawMetricRepository{}
}

func (m *MockRawMetricRepository) Create(ctx context.Context, record *domain.RawMetricRecord) error {
	if m.err != nil {
		return m.err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Date = domain.DateOnly(record.Date)
	for _, existing := range m.records {
		if existing.UserID == record.UserID && existing.Date.Equal(record.Date) && existing.MetricType == record.MetricType {
			return domain.ErrConflict
		}
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *MockRawMetricRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	kept := m.records[:0]
	for _, record := range m.records {
		if record.UserID != userID {
			kept = append(kept, record)
		}
	}
	m.records = kept
	m.deletes++
	return nil
}

func (m *MockRawMetricRepository) ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.RawMetricRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	day := domain.DateOnly(date)
	var result []domain.RawMetricRecord
	for _, record := range m.records {
		if record.UserID == userID && record.Date.Equal(day) {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *MockRawMetricRepository) ExistsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	day := domain.DateOnly(date)
	for _, record := range m.records {
		if record.UserID == userID && record.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRawMetricRepository) ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, record := range m.records {
		if record.UserID == userID && !seen[record.Date] {
			seen[record.Date] = true
			dates = append(dates, record.Date)
		}
	}
	return dates, nil
}

func (m *MockRawMetricRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for _, record := range m.records {
		if record.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockSyncLogRepository is a mock implementation of SyncLogRepository
type MockSyncLogRepository struct {
	entries []domain.SyncLog
	err     error
}

func NewMockSyncLogRepository() *MockSyncLogRepository {
	return &MockSyncLogRepository{}
}

func (m *MockSyncLogRepository) Create(ctx context.Context, entry *domain.SyncLog) error {
	if m.err != nil {
		return m.err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockSyncLogRepository) List(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) ([]domain.SyncLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.SyncLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *MockSyncLogRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.SyncLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockGarminClient is a scripted Garmin client for sync orchestration tests.
type mockGarminClient struct {
	authOK    bool
	authErr   error
	authCalls int

	// fetch is called for every date/metric pair; nil means every fetch
	// succeeds with a minimal meaningful payload.
	fetch func(date time.Time, metric domain.MetricType) garmin.FetchResult

	fetched []string
}

func (m *mockGarminClient) Authenticate(ctx context.Context, email, password string) (bool, error) {
	m.authCalls++
	if m.authErr != nil {
		return false, m.authErr
	}
	return m.authOK, nil
}

func (m *mockGarminClient) FetchData(ctx context.Context, date time.Time, metric domain.MetricType) garmin.FetchResult {
	m.fetched = append(m.fetched, date.Format("2006-01-02")+"/"+string(metric))
	if m.fetch != nil {
		return m.fetch(date, metric)
	}
	return garmin.FetchResult{Success: true, Data: []byte(`{"totalSteps":1}`)}
}

func fixedFactory(client garmin.Client) ClientFactory {
	return func(cfg garmin.Config) garmin.Client { return client }
}
