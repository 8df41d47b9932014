package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/llm"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
)

// InsightsService turns one day's analysis into an LLM narrative.
type InsightsService interface {
	// Generate creates insights for a user and date.
	Generate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.InsightsResponse, error)
}

type insightsService struct {
	analysisService  AnalysisService
	frameworkService FrameworkService
	llmClient        llm.InsightsLLM
	userRepo         repository.UserRepository
}

// NewInsightsService creates a new InsightsService.
func NewInsightsService(
	analysisService AnalysisService,
	frameworkService FrameworkService,
	llmClient llm.InsightsLLM,
	userRepo repository.UserRepository,
) InsightsService {
	return &insightsService{
		analysisService:  analysisService,
		frameworkService: frameworkService,
		llmClient:        llmClient,
		userRepo:         userRepo,
	}
}

func (s *insightsService) Generate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.InsightsResponse, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	analysis, err := s.analysisService.Analyze(ctx, userID, date, "daily")
	if err != nil {
		return nil, err
	}

	insightsCtx := &domain.InsightsContext{
		Date:     domain.DateOnly(date).Format("2006-01-02"),
		Analysis: analysis,
	}

	// The score is context for the narrative, not a hard dependency.
	if score, err := s.frameworkService.Compute(ctx, userID, date); err == nil {
		insightsCtx.FrameworkScore = score
	}

	llmOutput, err := s.llmClient.GenerateInsights(ctx, insightsCtx)
	if err != nil {
		return nil, err
	}

	return &domain.InsightsResponse{
		Date:        insightsCtx.Date,
		Insights:    *llmOutput,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
