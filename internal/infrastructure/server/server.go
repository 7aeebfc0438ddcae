package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/api/http"
	"github.com/promptdeck/promptdeck/backend/internal/api/middleware"
	"github.com/promptdeck/promptdeck/backend/internal/api/ws"
	"github.com/promptdeck/promptdeck/backend/internal/git"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/config"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/tracing"
	"github.com/promptdeck/promptdeck/backend/internal/mcp"
	"github.com/promptdeck/promptdeck/backend/internal/tasks"
	"github.com/promptdeck/promptdeck/backend/internal/terminal"
)

// Server owns the router and every subsystem behind it.
type Server struct {
	router   *gin.Engine
	mux      *terminal.Multiplexer
	hub      *ws.Hub
	store    *tasks.Store
	launcher *mcp.Launcher
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	cancel   context.CancelFunc
}

// NewServer wires the subsystems and the route table from cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	logger.Info("Initializing PromptDeck Backend",
		zap.String("port", cfg.Server.Port),
		zap.String("host", cfg.Server.Host),
	)

	metrics := monitoring.NewMetrics()

	// Terminal output and task store updates fan out through the hub.
	hub := ws.NewHub(logger.Named("ws")).WithMetrics(metrics)
	mux := terminal.New(hub, logger.Named("terminal")).WithMetrics(metrics)

	gitSvc := git.NewService(logger.Named("git"))

	store, err := tasks.NewStore(cfg.Tasks.Path, logger.Named("tasks"))
	if err != nil {
		return nil, fmt.Errorf("task store: %w", err)
	}
	logger.Info("Task store ready", zap.String("path", store.Path()))

	ctx, cancel := context.WithCancel(context.Background())
	watcher := tasks.NewWatcher(store, hub, logger.Named("tasks"))
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Task watcher stopped", zap.Error(err))
		}
	}()

	launcher := mcp.NewLauncher(cfg.MCP, store.Path(), logger.Named("mcp"))
	if cfg.MCP.Autostart {
		if err := launcher.Start(); err != nil {
			logger.Warn("MCP task server not started", zap.Error(err))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.Middleware(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.AllowedOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limit active",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst))
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(mux, gitSvc, store, launcher, hub, metrics, logger.Named("api"))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Terminal sessions
	router.POST("/terminal/sessions", handlers.OpenSession)
	router.POST("/terminal/sessions/:id/input", handlers.WriteSession)
	router.POST("/terminal/sessions/:id/resize", handlers.ResizeSession)
	router.DELETE("/terminal/sessions/:id", handlers.CloseSession)

	// Git inspection
	router.GET("/git/branch", handlers.GitBranch)
	router.GET("/git/diff", handlers.GitDiff)
	router.GET("/git/stats", handlers.GitStats)
	router.GET("/git/file-section", handlers.GitFileSection)
	router.POST("/git/reset-task", handlers.GitResetTask)

	// Task store
	router.GET("/tasks", handlers.GetTasks)
	router.PUT("/tasks", handlers.SaveTasks)

	// MCP task server
	router.POST("/mcp/start", handlers.StartMCP)
	router.POST("/mcp/stop", handlers.StopMCP)
	router.GET("/mcp/status", handlers.MCPStatus)
	router.GET("/mcp/command", handlers.MCPCommand)

	// GUI log ingestion
	router.POST("/logs", handlers.StreamLogs)

	// WebSocket event stream
	router.GET("/stream", hub.HandleConnection)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Backend initialized")

	return &Server{
		router:   router,
		mux:      mux,
		hub:      hub,
		store:    store,
		launcher: launcher,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		cancel:   cancel,
	}, nil
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close stops the watcher and the MCP child, kills every session PTY and
// disconnects stream clients.
func (s *Server) Close() error {
	s.logger.Info("Shutting down")

	s.cancel()

	if err := s.launcher.Stop(); err != nil {
		s.logger.Error("Failed to stop MCP task server", zap.Error(err))
	}

	s.mux.CloseAll()
	s.hub.Close()

	s.logger.Sync()
	return nil
}
