// Package server is the composition root: it opens the database, builds the
// stores, services and handlers, and mounts them on a chi router.
//
// The dependency chain runs one way:
//
//	sqlite.DB → stores → services → handlers → routes
//
// Handlers never see a store and services never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"

	"github.com/sakif/starwars-api/internal/auth"
	"github.com/sakif/starwars-api/internal/config"
	"github.com/sakif/starwars-api/internal/handler"
	"github.com/sakif/starwars-api/internal/middleware"
	"github.com/sakif/starwars-api/internal/model"
	sqliteRepo "github.com/sakif/starwars-api/internal/repository/sqlite"
	"github.com/sakif/starwars-api/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed when Start returns, or by Close for servers that never start.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *middleware.Metrics
}

// New wires a Server from cfg. cfg is expected to have passed Validate.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	path, err := sqliteRepo.ParseURL(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: middleware.NewMetrics(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts every endpoint.
//
// Middleware order matters: RequestID runs first so the logger can print the
// id, and Recoverer sits inside both so a panic is still logged and counted
// as a 500.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     s.config.Auth.JWTSecret,
		Issuer:     s.config.Auth.Issuer,
		AccessTTL:  s.config.Auth.AccessTTL,
		RefreshTTL: s.config.Auth.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(s.config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}

	userService := service.NewUserService(s.db.Users(), passwords, s.logger)
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	peopleService := service.NewPeopleService(s.db.People(), s.logger)
	planetService := service.NewPlanetService(s.db.Planets(), s.logger)
	favouriteService := service.NewFavouriteService(s.db.Favourites(), s.logger)

	userHandler := handler.NewUserHandler(userService, authService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	peopleHandler := handler.NewPeopleHandler(peopleService, s.logger)
	planetHandler := handler.NewPlanetHandler(planetService, s.logger)
	favouriteHandler := handler.NewFavouriteHandler(favouriteService, authService, s.logger)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}).Handler)

	r.Get("/", handler.Sitemap(r))
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Credential endpoints are the ones worth brute-forcing.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.config.RateLimit.Requests, s.config.RateLimit.Window))
		r.Post("/signup", userHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/token/refresh", authHandler.HandleRefresh)
	})

	r.Get("/users", userHandler.HandleList)
	r.Get("/users/{id}", userHandler.HandleGet)

	r.Get("/people", peopleHandler.HandleList)
	r.Get("/people/{id}", peopleHandler.HandleGet)
	r.Post("/people", peopleHandler.HandleCreate)

	r.Get("/planets", planetHandler.HandleList)
	r.Get("/planets/{id}", planetHandler.HandleGet)
	r.Post("/planets", planetHandler.HandleCreate)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/user", userHandler.HandleMe)
		r.Delete("/user", userHandler.HandleDeleteMe)
		r.Get("/user/favorites", favouriteHandler.HandleList)
		r.Delete("/user/favorites/{id}", favouriteHandler.HandleDelete)

		r.Post("/favorite/planet/{planet_id}", favouriteHandler.HandleAdd(model.KindPlanet, "planet_id"))
		r.Delete("/favorite/planet/{planet_id}", favouriteHandler.HandleRemove(model.KindPlanet, "planet_id"))
		r.Post("/favorite/people/{people_id}", favouriteHandler.HandleAdd(model.KindPerson, "people_id"))
		r.Delete("/favorite/people/{people_id}", favouriteHandler.HandleRemove(model.KindPerson, "people_id"))
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to the configured shutdown timeout. The database is closed on return.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.URL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
