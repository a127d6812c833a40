package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/marketplace/backend/internal/bootstrap"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
	"github.com/marketplace/backend/internal/infrastructure/taskqueue"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/marketplace/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect backing services and build the application graph
	c, err := bootstrap.Build(ctx, cfg, log, Version)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	log = c.Logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Close(closeCtx); err != nil {
			log.Error("Error closing services", zap.Error(err))
		}
	}()

	// The memory queue lives in this process, so it is consumed here
	consumerDone := make(chan struct{})
	if cfg.Tasks.Backend == taskqueue.BackendMemory || cfg.Tasks.Backend == "" {
		tasks := c.TaskRouter()
		go func() {
			defer close(consumerDone)
			if err := c.Queue.Consume(ctx, tasks); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Task consumer stopped", zap.Error(err))
			}
		}()
		log.Info("In-process task consumer started", zap.Strings("tasks", tasks.Names()))
	} else {
		close(consumerDone)
	}

	// Periodic reconciliation
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.NewScheduler(c.Queue, scheduler.PeriodicJobs(cfg.Scheduler), cfg.Scheduler, log)
		if err != nil {
			log.Fatal("Failed to create scheduler", zap.Error(err))
		}
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP handlers
	checks := map[string]handler.HealthCheck{"database": c.DB.Ping}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
	}

	engine := router.New(router.Options{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     c.Tracer.IsEnabled(),
		},
		Logger:         log,
		Tokens:         c.Tokens,
		Authorizer:     c.Evaluator,
		RateLimiter:    limiter,
		Meter:          c.HTTPMeter(),
		PanicReporters: []logger.PanicReporter{c.Reporter.ReportPanic},
	}, router.Handlers{
		Health:         handler.NewHealthHandler(Version, checks),
		AppTypes:       handler.NewAppTypeHandler(c.AppTypes),
		Apps:           handler.NewAppHandler(c.Apps, c.Provisioning, c.Evaluator),
		Cloud:          handler.NewCloudHandler(c.Apps, c.Provisioning, c.Evaluator),
		Catalogs:       handler.NewCatalogHandler(c.Apps, c.Catalogs, c.Feeds, c.Evaluator),
		Templates:      handler.NewTemplateHandler(c.Apps, c.Templates, c.Evaluator),
		Authorizations: handler.NewAuthorizationHandler(c.Authorizations),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.ShutdownGracePeriod+30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn("Task consumer did not drain before shutdown deadline")
	}

	log.Info("Server exited gracefully")
}
