package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/api/validation"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/service"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/pkg/problem"
)

type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(service service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Sync handles POST /v1/users/{userId}/garmin/sync
// @Summary Trigger a bulk Garmin sync
// @Description Clear and re-fetch the user's raw Garmin data for the requested number of weeks. A result with a non-empty errors list is incomplete, not failed.
// @Tags garmin
// @Accept json
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param request body domain.SyncRequest true "Sync window"
// @Success 200 {object} domain.SyncResult
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Failure 502 {object} problem.Problem "Garmin authentication failed"
// @Failure 503 {object} problem.Problem "No credentials configured"
// @Router /users/{userId}/garmin/sync [post]
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	result, err := h.service.BulkSync(r.Context(), userID, req.WeeksPast)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			problem.BadRequest("Sync window out of range").Write(w)
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrCredentialsMissing):
			problem.ServiceUnavailable("No Garmin credentials configured for this user").Write(w)
		case errors.Is(err, domain.ErrAuthFailed):
			problem.BadGateway("Garmin authentication failed").Write(w)
		default:
			problem.InternalError("Sync failed").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// TestConnection handles GET /v1/users/{userId}/garmin/test-connection
// @Summary Test Garmin credential configuration
// @Description Check that stored credentials are well-formed. Does not perform a Garmin login round-trip.
// @Tags garmin
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Success 200 {object} domain.TestConnectionResult
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Router /users/{userId}/garmin/test-connection [get]
func (h *SyncHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	result, err := h.service.TestConnection(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to test connection").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Dates handles GET /v1/users/{userId}/garmin/dates
// @Summary List dates with Garmin data
// @Description Distinct calendar dates with raw data, newest first.
// @Tags garmin
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Success 200 {array} string
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Router /users/{userId}/garmin/dates [get]
func (h *SyncHandler) Dates(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	dates, err := h.service.AvailableDataDates(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to list dates").Write(w)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format("2006-01-02")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formatted)
}

// SyncLogs handles GET /v1/users/{userId}/sync-logs
// @Summary List sync audit log
// @Description Paginated sync audit entries, newest first.
// @Tags garmin
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param limit query integer false "Results per page (1-100)" default(20)
// @Param cursor query string false "Cursor from previous response's next_cursor"
// @Success 200 {object} domain.SyncLogListResponse
// @Failure 400 {object} problem.Problem
// @Failure 404 {object} problem.Problem
// @Router /users/{userId}/sync-logs [get]
func (h *SyncHandler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	filter, fieldErrors := parseSyncLogFilter(r)
	if fieldErrors != nil {
		problem.ValidationError("Invalid query parameters", fieldErrors).Write(w)
		return
	}

	response, err := h.service.ListSyncLogs(r.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to list sync logs").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func parseSyncLogFilter(r *http.Request) (domain.SyncLogFilter, []problem.FieldError) {
	var filter domain.SyncLogFilter
	var fieldErrors []problem.FieldError

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "limit",
				Message: "must be a positive integer",
			})
		} else {
			filter.Limit = limit
		}
	}

	filter.Cursor = r.URL.Query().Get("cursor")

	if len(fieldErrors) > 0 {
		return filter, fieldErrors
	}
	return filter, nil
}

// parseDateParam reads an optional date query parameter, defaulting to
// today (UTC) when absent.
func parseDateParam(r *http.Request) (time.Time, *problem.FieldError) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return domain.DateOnly(time.Now().UTC()), nil
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, &problem.FieldError{
			Field:   "date",
			Message: "must be a date in YYYY-MM-DD format",
		}
	}
	return date, nil
}
