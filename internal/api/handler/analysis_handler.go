package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/llm"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/service"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/pkg/problem"
)

// AnalysisHandler serves pattern analysis, framework scores and LLM
// insights.
type AnalysisHandler struct {
	analysisService  service.AnalysisService
	frameworkService service.FrameworkService
	insightsService  service.InsightsService
}

// NewAnalysisHandler creates a new AnalysisHandler. insightsService may
// be nil when no LLM is configured.
func NewAnalysisHandler(
	analysisService service.AnalysisService,
	frameworkService service.FrameworkService,
	insightsService service.InsightsService,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService:  analysisService,
		frameworkService: frameworkService,
		insightsService:  insightsService,
	}
}

// Analyze handles GET /v1/users/{userId}/analysis
// @Summary Run pattern analysis for one day
// @Description Normalize the day's raw Garmin data and evaluate pattern, recommendation and alert rules. Days without data return empty lists.
// @Tags analysis
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param date query string false "Calendar date (YYYY-MM-DD), defaults to today"
// @Param type query string false "Analysis type label" default(daily)
// @Success 200 {object} domain.AnalysisResult
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Router /users/{userId}/analysis [get]
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	date, fieldErr := parseDateParam(r)
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	analysisType := r.URL.Query().Get("type")
	if analysisType == "" {
		analysisType = "daily"
	}

	result, err := h.analysisService.Analyze(r.Context(), userID, date, analysisType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Analysis failed").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// FrameworkScore handles GET /v1/users/{userId}/framework-score
// @Summary Compute the 7-dimension wellness score
// @Description Deterministic weighted score over the day's normalized metrics, with trends over the past week.
// @Tags analysis
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param date query string false "Calendar date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.FrameworkScore
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Router /users/{userId}/framework-score [get]
func (h *AnalysisHandler) FrameworkScore(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	date, fieldErr := parseDateParam(r)
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	score, err := h.frameworkService.Compute(r.Context(), userID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to compute framework score").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(score)
}

// Insights handles GET /v1/users/{userId}/insights
// @Summary Generate an LLM narrative for one analyzed day
// @Description Turn the day's analysis and framework score into a plain-language recovery narrative.
// @Tags analysis
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param date query string false "Calendar date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.InsightsResponse
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Failure 503 {object} problem.Problem "LLM not configured"
// @Router /users/{userId}/insights [get]
func (h *AnalysisHandler) Insights(w http.ResponseWriter, r *http.Request) {
	if h.insightsService == nil {
		problem.ServiceUnavailable("Insights are not available: LLM not configured").Write(w)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	date, fieldErr := parseDateParam(r)
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	response, err := h.insightsService.Generate(r.Context(), userID, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, llm.ErrOpenAIUnavailable):
			problem.ServiceUnavailable("Insights are not available: LLM not configured").Write(w)
		default:
			problem.InternalError("Failed to generate insights").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
