package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title     string    `json:"title"`
	Capacity  int       `json:"capacity"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		errs = append(errs, "start_date and end_date are required")
	} else if c.EndDate.Before(c.StartDate) {
		errs = append(errs, "end_date must not be before start_date")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMyEventsSuccessResponse is the success response envelope for GET /events/me (200).
type ListMyEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateTicketTypeRequest is the request body for POST /events/{eventID}/ticket-types.
// Prices are in cents.
type CreateTicketTypeRequest struct {
	Name             string     `json:"name"`
	Price            int64      `json:"price"`
	Quantity         int        `json:"quantity"`
	EarlyBirdPrice   *int64     `json:"early_bird_price"`
	EarlyBirdEndDate *time.Time `json:"early_bird_end_date"`
}

// Validate implements Validator.
func (c CreateTicketTypeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Price < 0 {
		errs = append(errs, "price must be non-negative")
	}
	if c.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	if c.EarlyBirdPrice != nil && c.EarlyBirdEndDate == nil {
		errs = append(errs, "early_bird_end_date is required with early_bird_price")
	}
	return errs
}

// CreateTicketTypeSuccessResponse is the success response envelope for POST /events/{eventID}/ticket-types (201).
type CreateTicketTypeSuccessResponse struct {
	Data  *domain.TicketType `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListTicketTypesSuccessResponse is the success response envelope for GET /events/{eventID}/ticket-types (200).
type ListTicketTypesSuccessResponse struct {
	Data  []*domain.TicketAvailability `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type EventController struct {
	Logger        *slog.Logger
	EventService  domain.EventService
	TicketService domain.TicketService
}

func NewEventController(logger *slog.Logger, eventSvc domain.EventService, ticketSvc domain.TicketService) *EventController {
	return &EventController{
		Logger:        logger,
		EventService:  eventSvc,
		TicketService: ticketSvc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event with a fixed capacity. The authenticated user becomes the organizer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	event := domain.NewEvent(req.Title, req.Capacity, req.StartDate, req.EndDate, userID, now, now)
	if err := c.EventService.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyEvents godoc
// @Summary List events organized by the current user
// @Description Returns events where the authenticated user is the organizer.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyEventsSuccessResponse "data is an array of events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.EventService.ListMyEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// CreateTicketType godoc
// @Summary Create a ticket type
// @Description Adds a priced ticket tier to the event. Only the organizer or an admin can create. Prices are in cents.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateTicketTypeRequest true "Ticket type data"
// @Success 201 {object} controllers.CreateTicketTypeSuccessResponse "data contains the created ticket type"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/ticket-types [post]
func (c *EventController) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CreateTicketTypeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	tt := &domain.TicketType{
		EventID:          eventID,
		Name:             req.Name,
		Price:            req.Price,
		Quantity:         req.Quantity,
		EarlyBirdPrice:   req.EarlyBirdPrice,
		EarlyBirdEndDate: req.EarlyBirdEndDate,
	}
	if err := c.TicketService.CreateTicketType(r.Context(), tt, userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tt)
}

// ListTicketTypes godoc
// @Summary List ticket types with availability
// @Description Returns the event's ticket tiers with remaining units and the price currently in effect.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListTicketTypesSuccessResponse "data is an array of ticket types with availability"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/ticket-types [get]
func (c *EventController) ListTicketTypes(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	availability, err := c.TicketService.ListAvailability(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}
