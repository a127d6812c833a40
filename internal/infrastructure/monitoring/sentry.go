// Package monitoring reports errors and panics to Sentry compatible
// error trackers.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Reporter sends errors to the configured hub. A Reporter without a hub
// only logs.
type Reporter struct {
	hub    *sentry.Hub
	logger *zap.Logger
}

// Init configures the global Sentry client. When sentry is disabled the
// returned Reporter only logs.
func Init(cfg config.SentryConfig, app config.AppConfig, release string, log *zap.Logger) (*Reporter, error) {
	if !cfg.Enabled || cfg.DSN == "" {
		return NewReporter(nil, log), nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      app.Env,
		Release:          release,
		ServerName:       app.Name,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	log.Info("Error tracking enabled", zap.String("environment", app.Env))
	return NewReporter(sentry.CurrentHub(), log), nil
}

// NewReporter creates a Reporter on hub. hub may be nil.
func NewReporter(hub *sentry.Hub, log *zap.Logger) *Reporter {
	return &Reporter{hub: hub, logger: log}
}

// Alert logs err and sends it with the correlation tags found in ctx
func (r *Reporter) Alert(ctx context.Context, message string, err error) {
	if err == nil {
		return
	}
	var eventID *sentry.EventID
	if r.hub != nil {
		hub := r.hub.Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			tagScope(ctx, scope)
			scope.SetExtra("message", message)
		})
		eventID = hub.CaptureException(fmt.Errorf("%s: %w", message, err))
	}
	r.logger.With(logger.Fields(ctx)...).Error(message,
		zap.Error(err),
		zap.Bool("reported", eventID != nil))
}

// ReportPanic is a logger.PanicReporter that forwards recovered HTTP panics
func (r *Reporter) ReportPanic(c *gin.Context, recovered any) {
	if r.hub == nil {
		return
	}
	hub := r.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		tagScope(c.Request.Context(), scope)
		scope.SetRequest(c.Request)
		scope.SetTag("route", c.FullPath())
	})
	hub.RecoverWithContext(c.Request.Context(), recovered)
}

// Flush waits for buffered events
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r.hub == nil {
		return true
	}
	return r.hub.Flush(timeout)
}

func tagScope(ctx context.Context, scope *sentry.Scope) {
	if v := logger.RequestID(ctx); v != "" {
		scope.SetTag("request_id", v)
	}
	if v := logger.ProjectUUID(ctx); v != "" {
		scope.SetTag("project_uuid", v)
	}
	if v := logger.UserEmail(ctx); v != "" {
		scope.SetUser(sentry.User{Email: v})
	}
}
