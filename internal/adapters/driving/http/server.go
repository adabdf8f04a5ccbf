package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campushq/campuschat-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server carries the API surface: auth and user management for staff,
// chat and conversations for everyone, settings for admins
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	authService         driving.AuthService
	userService         driving.UserService
	chatService         driving.ChatService
	conversationService driving.ConversationService
	settingsService     driving.SettingsService

	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	chatService driving.ChatService,
	conversationService driving.ConversationService,
	settingsService driving.SettingsService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		authService:         authService,
		userService:         userService,
		chatService:         chatService,
		conversationService: conversationService,
		settingsService:     settingsService,
		db:                  db,
		redisClient:         redisClient,
	}

	// Recovery is outermost; CORS answers preflights before routing.
	var handler http.Handler = s.router
	handler = withCORS(cfg.AllowedOrigins)(handler)
	handler = withLogging(handler)
	handler = withRecovery(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // streamed completions outlive a normal write window
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes mounts every route with its access level
func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.authService)

	// staff requires a signed-in account; admin additionally requires
	// the admin role; visitor admits guests carrying X-Guest-ID
	staff := func(h http.HandlerFunc) http.Handler { return auth.Authenticate(h) }
	admin := func(h http.HandlerFunc) http.Handler { return auth.Authenticate(auth.RequireAdmin(h)) }
	visitor := func(h http.HandlerFunc) http.Handler { return auth.OptionalAuth(h) }

	// Health and build info, unauthenticated
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Sign-in flow, public by nature
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)
	s.router.HandleFunc("POST /api/v1/setup", s.handleSetup)

	s.router.Handle("POST /api/v1/auth/logout", staff(s.handleLogout))
	s.router.Handle("POST /api/v1/auth/password", staff(s.handleChangePassword))
	s.router.Handle("GET /api/v1/me", staff(s.handleGetMe))

	// Staff account management
	s.router.Handle("GET /api/v1/users", admin(s.handleListUsers))
	s.router.Handle("POST /api/v1/users", admin(s.handleCreateUser))
	s.router.Handle("GET /api/v1/users/{id}", admin(s.handleGetUser))
	s.router.Handle("PUT /api/v1/users/{id}", admin(s.handleUpdateUser))
	s.router.Handle("DELETE /api/v1/users/{id}", admin(s.handleDeleteUser))
	s.router.Handle("PUT /api/v1/users/{id}/password", admin(s.handleSetUserPassword))

	// Chat and conversations, open to guests
	s.router.Handle("POST /api/v1/chat", visitor(s.handleChat))
	s.router.Handle("POST /api/v1/chat/stream", visitor(s.handleChatStream))
	s.router.Handle("GET /api/v1/conversations", visitor(s.handleListConversations))
	s.router.Handle("GET /api/v1/conversations/{id}", visitor(s.handleGetConversation))
	s.router.Handle("DELETE /api/v1/conversations/{id}", visitor(s.handleDeleteConversation))

	// Retrieval introspection for staff debugging the guide index
	s.router.Handle("GET /api/v1/retrieval/query", staff(s.handleRetrievalQuery))

	// Provider settings
	s.router.Handle("GET /api/v1/settings/chat", admin(s.handleGetChatSettings))
	s.router.Handle("PUT /api/v1/settings/chat", admin(s.handleUpdateChatSettings))
	s.router.Handle("GET /api/v1/settings/chat/status", staff(s.handleChatStatus))
	s.router.Handle("POST /api/v1/settings/chat/test", admin(s.handleTestChatConnection))
	s.router.Handle("GET /api/v1/providers", admin(s.handleListProviders))
}

// Start runs the server until SIGINT or SIGTERM, then drains connections
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
