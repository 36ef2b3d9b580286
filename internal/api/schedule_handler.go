package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pmorchard/polis-api/internal/api/shared"
	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/platform/logger"
)

// Scheduler persists a scheduled message and arms it for execution.
type Scheduler interface {
	Schedule(ctx context.Context, message string, runAt time.Time) (*domain.ScheduledMessage, error)
}

// ScheduleHandler handles creation of scheduled messages.
type ScheduleHandler struct {
	scheduler Scheduler
	validate  *validator.Validate
}

// NewScheduleHandler creates a ScheduleHandler backed by the given
// scheduler.
func NewScheduleHandler(scheduler Scheduler) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler: scheduler,
		validate:  validator.New(),
	}
}

// ScheduleRequest is the request body for creating a scheduled message.
// The run time is given either as an absolute RFC 3339 timestamp in
// run_at, or as a separate day ("2006-01-02") and time ("15:04") pair
// interpreted in the server's local time zone.
type ScheduleRequest struct {
	Message string `json:"message" validate:"required"`
	RunAt   string `json:"run_at,omitempty"`
	Day     string `json:"day,omitempty"`
	Time    string `json:"time,omitempty"`
}

// ScheduleMessage handles POST /api/schedules.
func (h *ScheduleHandler) ScheduleMessage(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	runAt, err := parseRunTime(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.scheduler.Schedule(r.Context(), req.Message, runAt)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) || errors.Is(err, domain.ErrZeroRunTime) {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		logger.FromContext(r.Context()).Error("failed to schedule message", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to schedule message")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, job)
}

// parseRunTime resolves the two accepted run-time shapes into a single
// timestamp.
func parseRunTime(req ScheduleRequest) (time.Time, error) {
	if req.RunAt != "" {
		t, err := time.Parse(time.RFC3339, req.RunAt)
		if err != nil {
			return time.Time{}, errors.New("run_at must be an RFC 3339 timestamp")
		}
		return t, nil
	}

	if req.Day != "" && req.Time != "" {
		t, err := time.ParseInLocation("2006-01-02T15:04", req.Day+"T"+req.Time, time.Local)
		if err != nil {
			return time.Time{}, errors.New("day must be YYYY-MM-DD and time must be HH:MM")
		}
		return t, nil
	}

	return time.Time{}, errors.New("either run_at or day and time are required")
}
