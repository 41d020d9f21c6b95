package controllers

import (
	"log/slog"
	"net/http"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
)

// CreateRegistrationRequest is the request body for POST /events/{eventID}/registrations.
type CreateRegistrationRequest struct {
	Quantity int `json:"quantity"`
	// Confirm creates the registration directly in CONFIRMED state with a
	// ticket number assigned.
	Confirm bool `json:"confirm"`
}

// Validate implements Validator.
func (c CreateRegistrationRequest) Validate() []string {
	var errs []string
	if c.Quantity < 0 {
		errs = append(errs, "quantity must be non-negative")
	}
	return errs
}

// CancelRegistrationRequest is the request body for DELETE /registrations/{registrationID}.
type CancelRegistrationRequest struct {
	Reason string `json:"reason"`
}

// PurchaseRequest is the request body for POST /registrations/{registrationID}/purchases.
type PurchaseRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// Validate implements Validator.
func (p PurchaseRequest) Validate() []string {
	var errs []string
	if p.TicketTypeID == "" {
		errs = append(errs, "ticket_type_id is required")
	}
	if p.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	return errs
}

// RegistrationSuccessResponse is the success response envelope for registration operations.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// PurchaseSuccessResponse is the success response envelope for POST /registrations/{registrationID}/purchases (201).
type PurchaseSuccessResponse struct {
	Data  *domain.TicketPurchase `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type RegistrationController struct {
	Logger              *slog.Logger
	RegistrationService domain.RegistrationService
	TicketService       domain.TicketService
}

func NewRegistrationController(logger *slog.Logger, regSvc domain.RegistrationService, ticketSvc domain.TicketService) *RegistrationController {
	return &RegistrationController{
		Logger:              logger,
		RegistrationService: regSvc,
		TicketService:       ticketSvc,
	}
}

// CreateRegistration godoc
// @Summary Register for an event
// @Description Creates a registration for the authenticated user, enforcing event capacity. With confirm=true the registration is created directly in CONFIRMED state with a ticket number.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateRegistrationRequest true "Registration data"
// @Success 201 {object} controllers.RegistrationSuccessResponse "data contains the created registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event sold out)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.RegistrationService.Create(r.Context(), domain.CreateRegistrationParams{
		EventID:  eventID,
		UserID:   userID,
		Quantity: req.Quantity,
		Confirm:  req.Confirm,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// GetRegistration godoc
// @Summary Get a registration
// @Description Returns the registration with its purchase lines and check-in state. Accessible to the registrant, the event's organizer, or an admin.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID} [get]
func (c *RegistrationController) GetRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.RegistrationService.Get(r.Context(), registrationID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ConfirmRegistration godoc
// @Summary Confirm a pending registration
// @Description Transitions a PENDING registration to CONFIRMED and assigns its ticket number. Only the event's organizer or an admin can confirm.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the confirmed registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/confirm [post]
func (c *RegistrationController) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.RegistrationService.Confirm(r.Context(), registrationID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Cancels the registration and returns its purchased units to the ticket pool. Accessible to the registrant, the event's organizer, or an admin. An optional reason is recorded in the activity log.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body CancelRegistrationRequest false "Cancellation reason"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the cancelled registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID} [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	// Body is optional on DELETE; a decode failure only loses the reason.
	var req CancelRegistrationRequest
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
	reg, err := c.RegistrationService.Cancel(r.Context(), registrationID, userID, req.Reason)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Purchase godoc
// @Summary Purchase tickets for a registration
// @Description Reserves units from a ticket tier and records the purchase line with the price frozen at purchase time. Accessible to the registrant, the event's organizer, or an admin.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body PurchaseRequest true "Purchase data"
// @Success 201 {object} controllers.PurchaseSuccessResponse "data contains the purchase line"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (sold out or cancelled registration)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/purchases [post]
func (c *RegistrationController) Purchase(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	var req PurchaseRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	purchase, err := c.TicketService.Purchase(r.Context(), registrationID, req.TicketTypeID, req.Quantity, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, purchase)
}
