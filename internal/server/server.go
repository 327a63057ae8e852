package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/ai"
	"github.com/dcode-ide/apiserver/internal/db"
	"github.com/dcode-ide/apiserver/internal/handlers"
	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/mq"
	"github.com/dcode-ide/apiserver/internal/runner"
	"github.com/dcode-ide/apiserver/internal/services"
	"github.com/dcode-ide/apiserver/internal/storage"
	"github.com/dcode-ide/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Users     *services.UserService
	Projects  *services.ProjectService
	Runs      *services.RunService
	Assistant *services.AssistantService
	Logger    logging.Logger
	RateLimit config.RateLimitConfig
	// TrustProxy rewrites RemoteAddr from forwarding headers before the
	// rate limiter keys on it.
	TrustProxy bool
	Started    time.Time
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     logging.Logger
	closers    []io.Closer
	stop       context.CancelFunc
}

// NewRouter builds the chi router for deps. Rate limiter housekeeping runs
// until ctx is done.
func NewRouter(ctx context.Context, deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}

	accessLog := middleware.Logger
	if cl, isCharm := deps.Logger.(*charmlog.Logger); isCharm {
		accessLog = middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  cl.StandardLog(),
			NoColor: true,
		})
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if deps.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(
		middleware.Recoverer,
		accessLog,
		middleware.Timeout(60*time.Second),
	)

	limited := handlers.RateLimit(ctx, deps.RateLimit.RPS, deps.RateLimit.Burst)

	handlers.HealthRouter(router, deps.Started)
	router.Group(func(r chi.Router) {
		r.Use(limited)
		handlers.AuthRouter(r, deps.Users, deps.Logger)
		handlers.AssistantRouter(r, deps.Assistant, deps.Logger)
	})
	handlers.ProjectRouter(router, handlers.NewProjectHandler(deps.Projects, deps.Users, deps.Runs, deps.Logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"msg":"Route not found"}`+"\n")
	})
	return router
}

// New constructs a Server from cfg, connecting to the configured store and
// optional object storage and broker.
func New(ctx context.Context, cfg config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{logger: logger}
	users, projects, err := s.openStore(ctx, cfg)
	if err != nil {
		s.closeAll()
		return nil, err
	}

	var opts []services.ProjectOption
	mirror, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	if mirror != nil {
		logger.Info("code mirror enabled", "backend", cfg.Storage.Backend, "bucket", mirror.Bucket())
		s.closers = append(s.closers, mirror)
		opts = append(opts, services.WithCodeMirror(mirror))
	}

	events, err := mq.New(ctx, cfg.MQ)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	if events != nil {
		logger.Info("project events enabled", "backend", cfg.MQ.Backend, "channel", events.Channel())
		s.closers = append(s.closers, events)
		opts = append(opts, services.WithEvents(events))
	}

	aiClient := ai.NewClient(cfg.AI)
	if aiClient.Configured() {
		logger.Info("ai assistant enabled", "model", aiClient.Model())
	} else {
		logger.Warn("ANTHROPIC_API_KEY is not set; /askAI will answer 503")
	}

	userService := services.NewUserService(users, cfg.Auth)
	projectService := services.NewProjectService(projects, logger, opts...)
	runService := services.NewRunService(projectService, runner.NewClient(cfg.Runner))
	assistantService := services.NewAssistantService(aiClient, projectService, logger)

	routerCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s.stop = stop
	s.router = NewRouter(routerCtx, Deps{
		Users:      userService,
		Projects:   projectService,
		Runs:       runService,
		Assistant:  assistantService,
		Logger:     logger,
		RateLimit:  cfg.RateLimit,
		TrustProxy: cfg.TrustProxy,
		Started:    time.Now(),
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context, cfg config.Config) (services.UserRepository, services.ProjectRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo, "":
		client, database, err := db.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, closerFunc(func() error {
			return client.Disconnect(context.Background())
		}))
		if err := store.EnsureMongoIndexes(ctx, database); err != nil {
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		s.logger.Info("using mongo store", "database", cfg.Mongo.Database)
		return store.NewMongoUserRepository(database), store.NewMongoProjectRepository(database), nil
	case config.StorePostgres:
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, dbConn)
		s.logger.Info("using postgres store", "host", cfg.Database.Host, "database", cfg.Database.DBName)
		return store.NewUserRepository(dbConn), store.NewProjectRepository(dbConn), nil
	case config.StoreMemory:
		s.logger.Warn("using in-memory store; data is lost on restart")
		mem := store.NewMemory()
		return mem.Users(), mem.Projects(), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the store and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	return err
}

func (s *Server) closeAll() {
	if s.stop != nil {
		s.stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Warn("close failed", "err", err)
		}
	}
	s.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
