package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"doorlist/internal/delivery/http/controllers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Everything except signup, login, and swagger sits behind RequireAuth.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	checkInController *controllers.CheckInController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events and ticket types
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/me", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("GET /events/{eventID}/ticket-types", auth(eventController.ListTicketTypes))
	mux.HandleFunc("POST /events/{eventID}/ticket-types", auth(eventController.CreateTicketType))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.CreateRegistration))
	mux.HandleFunc("GET /registrations/{registrationID}", auth(registrationController.GetRegistration))
	mux.HandleFunc("POST /registrations/{registrationID}/confirm", auth(registrationController.ConfirmRegistration))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(registrationController.CancelRegistration))
	mux.HandleFunc("POST /registrations/{registrationID}/purchases", auth(registrationController.Purchase))

	// Check-in
	mux.HandleFunc("GET /events/{eventID}/checkin", auth(checkInController.GetCheckInData))
	mux.HandleFunc("POST /events/{eventID}/checkin", auth(checkInController.CheckIn))
	mux.HandleFunc("POST /events/{eventID}/checkin/bulk", auth(checkInController.BulkCheckIn))
	mux.HandleFunc("DELETE /events/{eventID}/checkin/{registrationID}", auth(checkInController.UndoCheckIn))
	mux.HandleFunc("GET /events/{eventID}/checkin/export", auth(checkInController.Export))
	mux.HandleFunc("GET /events/{eventID}/activity", auth(checkInController.ListActivity))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
