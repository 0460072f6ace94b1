package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Harshith014/resumeUploader/config"
	"github.com/Harshith014/resumeUploader/internal/auth"
	"github.com/Harshith014/resumeUploader/internal/db"
	"github.com/Harshith014/resumeUploader/internal/handlers"
	"github.com/Harshith014/resumeUploader/internal/mq"
	"github.com/Harshith014/resumeUploader/internal/services"
	"github.com/Harshith014/resumeUploader/internal/storage"
	"github.com/Harshith014/resumeUploader/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the router needs.
type Deps struct {
	Users  *services.UserService
	Tokens *auth.TokenManager
	Assets handlers.AssetStore

	// StaticDir is served under StaticPrefix when set.
	StaticDir    string
	StaticPrefix string
}

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	mq         *mq.MQ
}

// NewRouter builds the HTTP routes on top of deps.
func NewRouter(cfg config.Config, deps Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", handlers.TokenHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	requireAuth := handlers.RequireAuth(deps.Tokens)

	api := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, deps.Users, deps.Tokens, requireAuth)
		})
		r.Route("/user", func(r chi.Router) {
			handlers.UserRouter(r, deps.Users, deps.Assets, requireAuth)
		})
	}

	router.Get("/healthz", handlers.Healthz)
	if cfg.BasePath == "" {
		router.Group(api)
	} else {
		router.Route(cfg.BasePath, api)
	}

	if deps.StaticDir != "" {
		prefix := "/" + strings.Trim(deps.StaticPrefix, "/")
		router.Get(prefix+"/*", staticFiles(prefix, deps.StaticDir))
	}

	return router
}

// staticFiles serves stored uploads without directory listings.
func staticFiles(prefix, dir string) http.HandlerFunc {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}
}

// New opens every backing service named in cfg and builds the server.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	assets, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	broker, err := mq.New(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	userService := services.NewUserService(userRepo, hasher, mq.NewEventPublisher(broker))

	deps := Deps{Users: userService, Tokens: tokens, Assets: assets}
	if dir, prefix, ok := assets.LocalDir(); ok {
		deps.StaticDir, deps.StaticPrefix = dir, prefix
	}
	router := NewRouter(cfg, deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 5000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		db:         dbConn,
		mq:         broker,
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		_ = s.closeResources()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown drains in-flight requests and releases the database pool and
// the event broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.closeResources())
}

func (s *Server) closeResources() error {
	var errs []error
	if s.mq != nil {
		errs = append(errs, s.mq.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
