// Package server is the composition root: it wires the database,
// services, session manager, and handlers together, defines every
// route, and owns startup and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/detox-companion/internal/analysis"
	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/handler"
	"github.com/sakif/detox-companion/internal/middleware"
	sqliteRepo "github.com/sakif/detox-companion/internal/repository/sqlite"
	"github.com/sakif/detox-companion/internal/service"
	"github.com/sakif/detox-companion/internal/session"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// AnalyzeURL is the base URL of the external analysis service.
	AnalyzeURL string

	// GitHub OAuth is optional; when ClientID is empty the OAuth routes
	// answer 404 and everything else works normally.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// AuthRatePerMinute caps login/register attempts per client IP.
	AuthRatePerMinute int
}

// Server owns the router and the resources that must be torn down on
// shutdown: the database connection and the session manager's cadence
// goroutines.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *session.Manager
}

// New assembles the full dependency chain:
//
//	sqlite.DB → services → handlers → routes
//
// Each layer receives only the interface it needs; handlers never see
// the database, services never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services, and maps
// every route.
//
//	GET  /health                  → liveness probe
//	POST /api/auth/register       → create account          (rate limited)
//	POST /api/auth/login          → password login           (rate limited)
//	GET  /auth/github/login       → start GitHub OAuth       (rate limited)
//	GET  /auth/github/callback    → finish GitHub OAuth      (rate limited)
//	GET  /api/user/progress       → streak/coins/lastLogin   (auth)
//	POST /api/user/add-coins      → direct coin credit       (auth)
//	POST /api/user/update-streak  → explicit streak sync     (auth)
//	GET  /api/session             → session snapshot         (auth)
//	POST /api/session/configure   → set duration             (auth)
//	POST /api/session/start       → start/resume countdown   (auth)
//	POST /api/session/pause       → pause countdown          (auth)
//	POST /api/session/reset       → abandon session          (auth)
//	POST /api/usage/log           → store today's snapshot   (auth)
//	GET  /api/usage/today         → today's snapshot         (auth)
//	GET  /api/usage/apps          → today's app breakdown    (auth)
//	POST /api/analyze             → classify usage vector    (auth)
//	GET  /api/analyze/history     → past classifications     (auth)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	analyzer := analysis.New(analysis.Config{BaseURL: s.config.AnalyzeURL})

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	usageService := service.NewUsageService(s.db, s.logger)
	analyzeService := service.NewAnalyzeService(analyzer, s.db, s.logger)
	s.sessions = session.NewManager(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	usageHandler := handler.NewUsageHandler(usageService, s.logger)
	sessionHandler := handler.NewSessionHandler(s.sessions, s.logger)
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Credential endpoints take the brunt of stuffing attempts, so the
	// rate limiter covers exactly these and nothing else.
	authLimiter := middleware.NewRateLimiter(s.config.AuthRatePerMinute)

	s.router.Route("/auth/github", func(r chi.Router) {
		r.Use(authLimiter.Handler)
		r.Get("/login", authHandler.HandleGitHubLogin)
		r.Get("/callback", authHandler.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Anonymous: the register/login pair.
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/user/progress", userHandler.HandleProgress)
			r.Post("/user/add-coins", userHandler.HandleAddCoins)
			r.Post("/user/update-streak", userHandler.HandleUpdateStreak)

			r.Get("/session", sessionHandler.HandleGet)
			r.Post("/session/configure", sessionHandler.HandleConfigure)
			r.Post("/session/start", sessionHandler.HandleStart)
			r.Post("/session/pause", sessionHandler.HandlePause)
			r.Post("/session/reset", sessionHandler.HandleReset)

			r.Post("/usage/log", usageHandler.HandleLog)
			r.Get("/usage/today", usageHandler.HandleToday)
			r.Get("/usage/apps", usageHandler.HandleApps)

			r.Post("/analyze", analyzeHandler.HandleAnalyze)
			r.Get("/analyze/history", analyzeHandler.HandleHistory)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down in
// order: stop accepting connections, drain in-flight requests, release
// the session cadence goroutines, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.sessions.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("analyzeURL", s.config.AnalyzeURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
