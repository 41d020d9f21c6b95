package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "github.com/lib/pq"

	"doorlist/config"
	_ "doorlist/docs"
	"doorlist/internal/adapters/auth"
	delivery "doorlist/internal/delivery/http"
	"doorlist/internal/delivery/http/controllers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
	"doorlist/internal/repository/postgres"
	"doorlist/internal/services"
)

// @title Doorlist API
// @version 1.0
// @description Event check-in and registration-state API: registrations, ticket allocation, check-in state machine, dashboards, and exports.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	ticketTypeRepo := postgres.NewTicketTypeRepository(db)
	purchaseRepo := postgres.NewTicketPurchaseRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	// Auth adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	clock := domain.SystemClock{}
	userService := services.NewUserService(userRepo, roleRepo, hasher, tokenIssuer, cfg.TokenExpiry, clock)
	eventService := services.NewEventService(eventRepo, clock)
	registrationService := services.NewRegistrationService(eventRepo, regRepo, roleRepo, ticketTypeRepo, activityRepo, logger, clock)
	ticketService := services.NewTicketService(eventRepo, regRepo, ticketTypeRepo, purchaseRepo, roleRepo, activityRepo, logger, clock)
	checkInService := services.NewCheckInService(eventRepo, regRepo, userRepo, roleRepo, activityRepo, logger, clock)
	reportService := services.NewReportService(eventRepo, regRepo, userRepo, roleRepo, activityRepo, clock)

	// Controllers
	authController := controllers.NewAuthController(logger, userService)
	eventController := controllers.NewEventController(logger, eventService, ticketService)
	registrationController := controllers.NewRegistrationController(logger, registrationService, ticketService)
	checkInController := controllers.NewCheckInController(logger, checkInService, reportService)

	mux := delivery.NewRouter(logger, tokenVerifier, authController, eventController, registrationController, checkInController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}
