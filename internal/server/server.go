package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"funnelfit/portal-backend/internal/config"
	"funnelfit/portal-backend/internal/onboarding"
	"funnelfit/portal-backend/internal/resume"
)

// Server wires the onboarding and resume modules behind one HTTP router
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	manager *onboarding.Manager
	sweeper *onboarding.Sweeper
	router  *gin.Engine
	http    *http.Server
}

// New builds a server from configuration. It connects to the selected resume backend.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	store, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}

	tracker := resume.NewTracker(store, logger)
	s.manager = onboarding.NewManager(resume.NewCompletionRecorder(tracker), logger)
	s.sweeper = onboarding.NewSweeper(s.manager, cfg.Sessions.SweepSchedule, cfg.Sessions.IdleTTL.Duration, logger)

	onboardingHandler := onboarding.NewHandler(s.manager, tracker, logger)
	resumeHandler := resume.NewHandler(tracker, logger)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors())

	api := router.Group("/api/v1")
	{
		onboardingHandler.RegisterRoutes(api)
		resumeHandler.RegisterRoutes(api)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"timestamp":       time.Now(),
			"resume_backend":  cfg.Resume.Backend,
			"active_sessions": s.manager.Count(),
		})
	})

	s.router = router
	s.http = &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context) (resume.KVStore, error) {
	switch s.cfg.Resume.Backend {
	case config.BackendPostgres:
		s.logger.Info("Connecting to database",
			zap.String("host", s.cfg.Database.Host),
			zap.String("db_name", s.cfg.Database.DBName))
		db, err := sqlx.ConnectContext(ctx, "postgres", s.cfg.Database.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(s.cfg.Database.MaxConnections)
		db.SetMaxIdleConns(s.cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(s.cfg.Database.MaxLifetime.Duration)
		if err := resume.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare resume table: %w", err)
		}
		s.db = db
		return resume.NewPostgresStore(db), nil

	case config.BackendDynamoDB:
		client, err := resume.NewDynamoClient(ctx, s.cfg.Resume.Region, s.cfg.Resume.Endpoint)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Using DynamoDB resume store", zap.String("table", s.cfg.Resume.DynamoTable))
		return resume.NewDynamoStore(client, s.cfg.Resume.DynamoTable), nil

	default:
		return resume.NewMemoryStore(), nil
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.sweeper.Start(); err != nil {
		return err
	}
	defer s.sweeper.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("Server started", zap.String("addr", s.http.Addr))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server exiting")
	return nil
}

// Close releases the database connection, if any
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
