package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
)

// CheckInRequest is the request body for POST /events/{eventID}/checkin.
type CheckInRequest struct {
	RegistrationID string `json:"registration_id"`
	Notes          string `json:"notes"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	var errs []string
	if c.RegistrationID == "" {
		errs = append(errs, "registration_id is required")
	}
	return errs
}

// BulkCheckInRequest is the request body for POST /events/{eventID}/checkin/bulk.
type BulkCheckInRequest struct {
	RegistrationIDs []string `json:"registration_ids"`
	Notes           string   `json:"notes"`
}

// Validate implements Validator.
func (b BulkCheckInRequest) Validate() []string {
	var errs []string
	if len(b.RegistrationIDs) == 0 {
		errs = append(errs, "registration_ids is required")
	}
	return errs
}

// UndoCheckInRequest is the request body for DELETE /events/{eventID}/checkin/{registrationID}.
type UndoCheckInRequest struct {
	Reason string `json:"reason"`
}

// CheckInSuccessResponse is the success response envelope for POST /events/{eventID}/checkin.
// 201 on a fresh check-in, 200 when the registration was already checked in.
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// BulkCheckInSuccessResponse is the success response envelope for POST /events/{eventID}/checkin/bulk (200).
type BulkCheckInSuccessResponse struct {
	Data  *domain.BulkCheckInResult `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// UndoCheckInSuccessResponse is the success response envelope for DELETE /events/{eventID}/checkin/{registrationID} (200).
type UndoCheckInSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CheckInDataSuccessResponse is the success response envelope for GET /events/{eventID}/checkin (200).
type CheckInDataSuccessResponse struct {
	Data  *domain.CheckInData `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListActivityResponse is the data payload for GET /events/{eventID}/activity (200).
type ListActivityResponse struct {
	Items      []*domain.Activity     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListActivitySuccessResponse is the success response envelope for GET /events/{eventID}/activity (200).
type ListActivitySuccessResponse struct {
	Data  ListActivityResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type CheckInController struct {
	Logger         *slog.Logger
	CheckInService domain.CheckInService
	ReportService  domain.ReportService
}

func NewCheckInController(logger *slog.Logger, checkInSvc domain.CheckInService, reportSvc domain.ReportService) *CheckInController {
	return &CheckInController{
		Logger:         logger,
		CheckInService: checkInSvc,
		ReportService:  reportSvc,
	}
}

// CheckIn godoc
// @Summary Check in a registration
// @Description Marks a confirmed registration as checked in and appends a history entry. Checking in an already-checked-in registration returns 200 with already_checked_in true and the original timestamp; nothing is mutated. Only the event's organizer or an admin can check in.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CheckInRequest true "Registration to check in"
// @Success 200 {object} controllers.CheckInSuccessResponse "already checked in; data.already_checked_in is true"
// @Success 201 {object} controllers.CheckInSuccessResponse "fresh check-in"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (registration not confirmed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkin [post]
func (c *CheckInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.CheckInService.CheckIn(r.Context(), eventID, req.RegistrationID, userID, req.Notes)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyCheckedIn {
		status = http.StatusOK
	}
	helpers.WriteJSONSuccess(w, status, result)
}

// BulkCheckIn godoc
// @Summary Check in multiple registrations
// @Description Applies check-in to each registration ID independently; one entry's failure never aborts the rest. Returns per-entry outcomes and a summary. Only the event's organizer or an admin can check in.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body BulkCheckInRequest true "Registrations to check in"
// @Success 200 {object} controllers.BulkCheckInSuccessResponse "data contains per-entry results and a summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkin/bulk [post]
func (c *CheckInController) BulkCheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req BulkCheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.CheckInService.BulkCheckIn(r.Context(), eventID, req.RegistrationIDs, userID, req.Notes)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// UndoCheckIn godoc
// @Summary Undo a check-in
// @Description Reverts a checked-in registration and appends an undo entry to its history. Not idempotent: undoing a registration that is not checked in returns 409. Only the event's organizer or an admin can undo.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body UndoCheckInRequest false "Undo reason"
// @Success 200 {object} controllers.UndoCheckInSuccessResponse "data contains the reverted registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not checked in)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkin/{registrationID} [delete]
func (c *CheckInController) UndoCheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	registrationID := r.PathValue("registrationID")
	if eventID == "" || registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or registrationID")
		return
	}
	var req UndoCheckInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.CheckInService.UndoCheckIn(r.Context(), eventID, registrationID, userID, req.Reason)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// GetCheckInData godoc
// @Summary Check-in dashboard data
// @Description Returns the event's check-in statistics, the hour-of-day timeline over the trailing seven days, the latest check-ins, and all registrations with attendee identities. Only the event's organizer or an admin can view.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CheckInDataSuccessResponse "data contains statistics, timeline, recent check-ins, and registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkin [get]
func (c *CheckInController) GetCheckInData(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	data, err := c.ReportService.GetCheckInData(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, data)
}

// Export godoc
// @Summary Export registrations
// @Description Streams the event's registrations as CSV or JSON, selected by the format query parameter. Only the event's organizer or an admin can export.
// @Tags checkin
// @Produce json
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param format query string true "Export format: csv or json"
// @Success 200 {string} string "the export body"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unsupported format)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkin/export [get]
func (c *CheckInController) Export(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	format := domain.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.ExportCSV
	}
	body, contentType, err := c.ReportService.Export(r.Context(), eventID, userID, format)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "checkin-export."+string(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListActivity godoc
// @Summary List the event's activity log
// @Description Returns a paginated page of the event's activity log, newest first. Use page and page_size query params. Only the event's organizer or an admin can view.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListActivitySuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/activity [get]
func (c *CheckInController) ListActivity(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.ReportService.ListActivity(r.Context(), eventID, userID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListActivityResponse{Items: items, Pagination: meta})
}
