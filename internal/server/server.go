// Package server sets up the HTTP server, router, and all route
// definitions. It is the composition root: the database, token service,
// services, and handlers are all wired together here, and each layer only
// receives what it needs.
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

	"github.com/nisthasiemens/docshare/internal/auth"
	"github.com/nisthasiemens/docshare/internal/handler"
	"github.com/nisthasiemens/docshare/internal/middleware"
	sqliteRepo "github.com/nisthasiemens/docshare/internal/repository/sqlite"
	"github.com/nisthasiemens/docshare/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file, or ":memory:"
	JWTSecret string // HMAC secret for session tokens
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL gets flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency chain assembled:
// sqlite.DB → services → handlers → routes.
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

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/register                        create account
//	POST   /api/login                           open session (sets cookie)
//	POST   /api/logout                          close session
//	GET    /api/me                              current user            [auth]
//	GET    /api/users                           list users              [auth]
//	PUT    /api/users/{id}                      edit user               [auth]
//	DELETE /api/users/{id}                      delete user             [auth]
//	GET    /api/users/shareable                 share-target picker     [auth]
//	POST   /api/documents                       upload                  [auth]
//	GET    /api/documents                       my uploads              [auth]
//	GET    /api/documents/shared                shared with me          [auth]
//	GET    /api/documents/{id}                  fetch one               [auth]
//	GET    /api/documents/{id}/file             download                [auth]
//	PUT    /api/documents/{id}                  edit description        [auth]
//	DELETE /api/documents/{id}                  delete                  [auth]
//	GET    /api/documents/{id}/shares           share list              [auth]
//	POST   /api/documents/{id}/shares           share                   [auth]
//	DELETE /api/documents/{id}/shares/{userID}  unshare                 [auth]
//	GET    /api/chat                            chat history            [auth]
//	POST   /api/chat                            post message            [auth]
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// Each service gets the table views it needs; they only see the
	// repository interfaces, never *sqlite.DB itself.
	identityService := service.NewIdentityService(s.db.Users(), s.db.Session(), s.logger)
	documentService := service.NewDocumentService(s.db.Uploads(), s.db.Session(), s.logger)
	sharingService := service.NewSharingService(s.db.Uploads(), s.db.Users(), s.logger)
	chatService := service.NewChatService(s.db.Chat(), s.db.Session(), s.logger)

	identityHandler := handler.NewIdentityHandler(identityService, tokens, s.logger)
	documentHandler := handler.NewDocumentHandler(documentService, s.logger)
	sharingHandler := handler.NewSharingHandler(sharingService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public: anyone can register or attempt a login.
		r.Post("/register", identityHandler.HandleRegister)
		r.Post("/login", identityHandler.HandleLogin)

		// Everything else needs a valid session cookie.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/logout", identityHandler.HandleLogout)
			r.Get("/me", identityHandler.HandleMe)

			r.Get("/users", identityHandler.HandleListUsers)
			r.Get("/users/shareable", sharingHandler.HandleShareableUsers)
			r.Put("/users/{id}", identityHandler.HandleEditUser)
			r.Delete("/users/{id}", identityHandler.HandleDeleteUser)

			r.Post("/documents", documentHandler.HandleUpload)
			r.Get("/documents", documentHandler.HandleListMine)
			r.Get("/documents/shared", documentHandler.HandleListShared)
			r.Get("/documents/{id}", documentHandler.HandleGet)
			r.Get("/documents/{id}/file", documentHandler.HandleDownload)
			r.Put("/documents/{id}", documentHandler.HandleEdit)
			r.Delete("/documents/{id}", documentHandler.HandleDelete)

			r.Get("/documents/{id}/shares", sharingHandler.HandleListShares)
			r.Post("/documents/{id}/shares", sharingHandler.HandleShare)
			r.Delete("/documents/{id}/shares/{userID}", sharingHandler.HandleUnshare)

			r.Get("/chat", chatHandler.HandleHistory)
			r.Post("/chat", chatHandler.HandlePost)
		})
	})

	return nil
}

// Handler exposes the configured router, mainly for tests that drive the
// full route table through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database without going through Start's shutdown path.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
