// Package bootstrap wires configuration, infrastructure and application
// services into the graph shared by the server and worker binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	appsvc "github.com/marketplace/backend/internal/application/app"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/application/provisioning"
	syncapp "github.com/marketplace/backend/internal/application/sync"
	templateapp "github.com/marketplace/backend/internal/application/template"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/facebook"
	"github.com/marketplace/backend/internal/infrastructure/feedparser"
	"github.com/marketplace/backend/internal/infrastructure/flows"
	"github.com/marketplace/backend/internal/infrastructure/lock"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/monitoring"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/storage"
	"github.com/marketplace/backend/internal/infrastructure/taskqueue"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/infrastructure/vtex"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const lockKeyPrefix = "marketplace:lock:"

// Container holds the wired process dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Reporter *monitoring.Reporter
	Tracer   *telemetry.TracerProvider
	Meter    *telemetry.MeterProvider
	Logs     *telemetry.LoggerProvider
	Profiler *telemetry.Profiler
	DB       *persistence.Database
	Redis    *redis.Client
	Locker   shared.Locker
	Queue    taskqueue.Queue
	Archive  *storage.S3FeedArchive

	Registry       *apptype.Registry
	Tokens         *auth.JWTService
	Evaluator      *identityapp.PermissionEvaluator
	Authorizations *identityapp.AuthorizationService
	AppTypes       *appsvc.AppTypeService
	Apps           *appsvc.AppService
	Provisioning   *provisioning.Service
	Catalogs       *catalogapp.Service
	Feeds          *catalogapp.FeedService
	Templates      *templateapp.Service
	Reconciler     *syncapp.Reconciler

	closers []func(ctx context.Context) error
}

// Build connects every backing service and constructs the application
// services. On error the connections opened so far are closed.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, release string) (c *Container, err error) {
	c = &Container{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
			c = nil
		}
	}()

	if release != "" {
		telemetry.ServiceVersion = release
	}
	if c.Tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	c.closers = append(c.closers, c.Tracer.Shutdown)

	if c.Logs, err = telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log); err != nil {
		return nil, fmt.Errorf("telemetry logs: %w", err)
	}
	c.closers = append(c.closers, c.Logs.Shutdown)
	log = telemetry.BridgeLogger(log, c.Logs, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	c.Logger = log

	if c.Meter, err = telemetry.NewMeterProvider(ctx, cfg.Telemetry, log); err != nil {
		return nil, fmt.Errorf("telemetry metrics: %w", err)
	}
	c.closers = append(c.closers, c.Meter.Shutdown)

	if c.Profiler, err = telemetry.NewProfiler(cfg.Profiling, log); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func(context.Context) error { return c.Profiler.Stop() })
	if c.Profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		c.Tracer.EnableSpanProfiles()
	}

	if c.Reporter, err = monitoring.Init(cfg.Sentry, cfg.App, release, log); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func(context.Context) error {
		c.Reporter.Flush(2 * time.Second)
		return nil
	})

	if c.DB, err = persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      cfg.Log.Level,
		SlowThreshold: 200 * time.Millisecond,
		Trace:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	}); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return c.DB.Close() })
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	if c.Meter.IsEnabled() && cfg.Telemetry.DBMetricsEnabled {
		dbMetrics, err := telemetry.RegisterDBMetrics(ctx, c.DB.DB, c.Meter.Meter("db.client"), telemetry.DBMetricsConfig{
			SlowQueryThreshold: 200 * time.Millisecond,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("database metrics: %w", err)
		}
		c.closers = append(c.closers, func(context.Context) error {
			dbMetrics.Stop()
			return nil
		})
	}

	// The memory backend runs single-process, so no shared lock is needed
	if cfg.Tasks.Backend == taskqueue.BackendMemory || cfg.Tasks.Backend == "" {
		c.Locker = lock.NewMemoryLocker()
	} else {
		if c.Redis, err = lock.NewRedisClient(ctx, &cfg.Redis); err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func(context.Context) error { return c.Redis.Close() })
		c.Locker = lock.NewRedisLocker(c.Redis, lockKeyPrefix)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var rdb redis.UniversalClient
	if c.Redis != nil {
		rdb = c.Redis
	}
	if c.Queue, err = taskqueue.New(cfg.Tasks, rdb, log); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func(context.Context) error { return c.Queue.Close() })

	var archive catalogapp.FileArchive
	if cfg.Storage.Enabled {
		if c.Archive, err = storage.NewS3FeedArchive(ctx, &cfg.Storage, log); err != nil {
			return nil, err
		}
		if err = c.Archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		archive = c.Archive
	}

	policy, err := auth.NewCasbinRolePolicy(log)
	if err != nil {
		return nil, err
	}

	db := c.DB.DB
	appRepo := persistence.NewGormAppRepository(db)
	authRepo := persistence.NewGormAuthorizationRepository(db)
	catalogRepo := persistence.NewGormCatalogRepository(db)
	feedRepo := persistence.NewGormFeedRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	templateRepo := persistence.NewGormTemplateRepository(db)

	var calls *telemetry.ClientMetrics
	if c.Meter.IsEnabled() {
		if calls, err = telemetry.NewClientMetrics(c.Meter.Meter("external.client")); err != nil {
			return nil, err
		}
	}
	flowsClient := flows.NewClient(cfg.Flows, cfg.Auth, log).WithMetrics(calls)
	graph := facebook.NewClient(cfg.WhatsApp, log).WithMetrics(calls)
	store := vtex.NewClient(cfg.VTEX, log)

	c.Registry = apptype.DefaultRegistry()
	c.Tokens = auth.NewJWTService(cfg.Auth)
	c.Evaluator = identityapp.NewPermissionEvaluator(authRepo, policy, identityapp.OperatorConfig{
		AllowCRMAccess: cfg.Auth.AllowCRMAccess,
		CRMEmails:      cfg.Auth.CRMEmails,
	}, log)
	c.Authorizations = identityapp.NewAuthorizationService(authRepo, log)
	c.AppTypes = appsvc.NewAppTypeService(c.Registry, flowsClient, log)
	c.Apps = appsvc.NewAppService(c.Registry, appRepo)
	c.Provisioning = provisioning.NewService(provisioning.Dependencies{
		Registry:     c.Registry,
		Apps:         appRepo,
		Channels:     flowsClient,
		Projects:     flowsClient,
		WABAs:        graph,
		Store:        store,
		Tasks:        c.Queue,
		Logger:       log,
		ChannelTypes: flowsClient,
	})
	c.Catalogs = catalogapp.NewService(appRepo, catalogRepo, productRepo, graph, flowsClient, log)
	c.Feeds = catalogapp.NewFeedService(c.Catalogs, feedRepo, productRepo, graph, feedparser.NewCSVParser(), archive, c.Queue, log)
	c.Templates = templateapp.NewService(appRepo, templateRepo, graph, log)
	c.Reconciler = syncapp.NewReconciler(c.Registry, appRepo, flowsClient, graph, c.Locker, syncapp.Options{
		SystemUser:  cfg.Scheduler.SystemUserEmail,
		LockTTL:     cfg.Scheduler.LockTTL,
		Concurrency: cfg.Scheduler.RefreshConcurrency,
	}, log)

	return c, nil
}

// HTTPMeter is the meter of the request metrics, nil when metrics are off
func (c *Container) HTTPMeter() metric.Meter {
	if !c.Meter.IsEnabled() {
		return nil
	}
	return c.Meter.Meter("http.server")
}

// TaskRouter routes every asynchronous task to its handler. Failed tasks
// are reported as alerts.
func (c *Container) TaskRouter() *taskqueue.Router {
	r := taskqueue.NewRouter(c.Logger)
	r.RegisterAll(c.Reconciler.Handlers())
	r.Register(shared.TaskCreateProductsByFeed, shared.TaskHandlerFunc(c.Feeds.HandleTask))
	r.OnFailure(func(ctx context.Context, task shared.Task, err error) {
		c.Reporter.Alert(ctx, "Task "+task.Name+" failed", err)
	})
	return r
}

// Close releases every connection in reverse opening order
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
