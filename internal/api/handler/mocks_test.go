package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	createFunc           func(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	storeCredentialsFunc func(ctx context.Context, id uuid.UUID, req *domain.StoreCredentialsRequest) error
}

func (m *MockUserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &domain.User{ID: uuid.New(), Timezone: req.Timezone}, nil
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserService) StoreCredentials(ctx context.Context, id uuid.UUID, req *domain.StoreCredentialsRequest) error {
	if m.storeCredentialsFunc != nil {
		return m.storeCredentialsFunc(ctx, id, req)
	}
	return nil
}

// MockSyncService is a mock implementation of SyncService
type MockSyncService struct {
	bulkSyncFunc       func(ctx context.Context, userID uuid.UUID, weeksPast int) (*domain.SyncResult, error)
	autoSyncAllFunc    func(ctx context.Context) (*domain.AutoSyncSummary, error)
	testConnectionFunc func(ctx context.Context, userID uuid.UUID) (*domain.TestConnectionResult, error)
	datesFunc          func(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	listSyncLogsFunc   func(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) (*domain.SyncLogListResponse, error)
}

func (m *MockSyncService) BulkSync(ctx context.Context, userID uuid.UUID, weeksPast int) (*domain.SyncResult, error) {
	if m.bulkSyncFunc != nil {
		return m.bulkSyncFunc(ctx, userID, weeksPast)
	}
	return &domain.SyncResult{Success: true, Errors: []string{}}, nil
}

func (m *MockSyncService) AutoSyncAll(ctx context.Context) (*domain.AutoSyncSummary, error) {
	if m.autoSyncAllFunc != nil {
		return m.autoSyncAllFunc(ctx)
	}
	return &domain.AutoSyncSummary{Errors: []string{}}, nil
}

func (m *MockSyncService) TestConnection(ctx context.Context, userID uuid.UUID) (*domain.TestConnectionResult, error) {
	if m.testConnectionFunc != nil {
		return m.testConnectionFunc(ctx, userID)
	}
	return &domain.TestConnectionResult{Success: true}, nil
}

func (m *MockSyncService) AvailableDataDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	if m.datesFunc != nil {
		return m.datesFunc(ctx, userID)
	}
	return []time.Time{}, nil
}

func (m *MockSyncService) ListSyncLogs(ctx context.Context, userID uuid.UUID, filter domain.SyncLogFilter) (*domain.SyncLogListResponse, error) {
	if m.listSyncLogsFunc != nil {
		return m.listSyncLogsFunc(ctx, userID, filter)
	}
	return &domain.SyncLogListResponse{Data: []domain.SyncLogResponse{}}, nil
}

// MockAnalysisService is a mock implementation of AnalysisService
type MockAnalysisService struct {
	analyzeFunc func(ctx context.Context, userID uuid.UUID, date time.Time, analysisType string) (*domain.AnalysisResult, error)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, userID uuid.UUID, date time.Time, analysisType string) (*domain.AnalysisResult, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, userID, date, analysisType)
	}
	return &domain.AnalysisResult{
		Date:            domain.DateOnly(date),
		AnalysisType:    analysisType,
		Patterns:        []domain.Pattern{},
		Recommendations: []domain.Recommendation{},
		Alerts:          []domain.Alert{},
	}, nil
}

// MockFrameworkService is a mock implementation of FrameworkService
type MockFrameworkService struct {
	computeFunc func(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.FrameworkScore, error)
}

func (m *MockFrameworkService) Compute(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.FrameworkScore, error) {
	if m.computeFunc != nil {
		return m.computeFunc(ctx, userID, date)
	}
	return &domain.FrameworkScore{Dimensions: []domain.DimensionScore{}}, nil
}

// MockInsightsService is a mock implementation of InsightsService
type MockInsightsService struct {
	generateFunc func(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.InsightsResponse, error)
}

func (m *MockInsightsService) Generate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.InsightsResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID, date)
	}
	return &domain.InsightsResponse{Date: date.Format("2006-01-02")}, nil
}
