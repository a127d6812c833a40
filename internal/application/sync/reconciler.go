// Package syncapp reconciles local Apps with the channels of the orchestration
// backend and refreshes WhatsApp Cloud account data from Facebook.
package syncapp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Lock keys, one per job
const (
	LockSyncApps         = "sync-whatsapp-apps-lock"
	LockSyncWABAs        = "sync-whatsapp-cloud-wabas-lock"
	LockSyncPhoneNumbers = "sync-whatsapp-cloud-phone-numbers-lock"
)

// DefaultLockTTL bounds how long a crashed worker can block a job
const DefaultLockTTL = 30 * time.Minute

// ReconciledChannelTypes are the remote channel types mirrored as Apps
var ReconciledChannelTypes = []string{integration.ChannelTypeWhatsApp, integration.ChannelTypeWhatsAppCloud}

// Options tune the synchronizer
type Options struct {
	// SystemUser is recorded as creator of Apps discovered remotely
	SystemUser string
	LockTTL    time.Duration
	// Concurrency bounds parallel Facebook lookups of the refresh jobs
	Concurrency int
}

// Reconciler runs the periodic synchronization jobs
type Reconciler struct {
	registry *apptype.Registry
	apps     app.Repository
	channels integration.ChannelManager
	wabas    integration.WABAManager
	locker   shared.Locker
	opts     Options
	logger   *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	registry *apptype.Registry,
	apps app.Repository,
	channels integration.ChannelManager,
	wabas integration.WABAManager,
	locker shared.Locker,
	opts Options,
	logger *zap.Logger,
) *Reconciler {
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Reconciler{
		registry: registry,
		apps:     apps,
		channels: channels,
		wabas:    wabas,
		locker:   locker,
		opts:     opts,
		logger:   logger,
	}
}

// SyncResult counts what a reconciliation changed
type SyncResult struct {
	Created  int
	Updated  int
	Migrated int
	Failed   int
	Skipped  bool
}

// SyncApps mirrors remote WhatsApp channels as local Apps. When another
// worker holds the lock it returns at once with Skipped set.
func (r *Reconciler) SyncApps(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}
	ran, err := r.withLock(ctx, LockSyncApps, func(ctx context.Context) error {
		for _, channelType := range ReconciledChannelTypes {
			if err := r.syncChannelType(ctx, channelType, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Skipped = !ran
	if ran {
		r.logger.Info("WhatsApp apps synchronized",
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("migrated", result.Migrated),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}

func (r *Reconciler) syncChannelType(ctx context.Context, channelType string, result *SyncResult) error {
	t, ok := r.registry.ByChannelTypeCode(channelType)
	if !ok {
		r.logger.Warn("No app type for channel type", zap.String("channel_type", channelType))
		return nil
	}
	code := t.Descriptor().Code.String()

	channels, err := r.channels.ListChannels(ctx, channelType)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if err := r.reconcile(ctx, code, ch, result); err != nil {
			result.Failed++
			r.logger.Warn("Failed to reconcile channel",
				zap.String("channel_uuid", ch.UUID),
				zap.String("channel_type", channelType),
				zap.Error(err))
		}
	}
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, code string, ch integration.Channel, result *SyncResult) error {
	flowObject, err := uuid.Parse(ch.UUID)
	if err != nil {
		return integration.ErrInvalidResponse
	}

	existing, err := r.apps.FindByFlowObjectUUID(ctx, flowObject)
	if errors.Is(err, app.ErrAppNotFound) {
		return r.createFromChannel(ctx, code, flowObject, ch, result)
	}
	if err != nil {
		return err
	}

	changed := false
	if existing.MigrateCode(code) {
		changed = true
		result.Migrated++
	}
	remoteToken := app.Config(ch.Config).GetString("auth_token")
	if remoteToken != "" && remoteToken != existing.Config.GetString("auth_token") {
		cfg := existing.Config.Clone()
		cfg.Set("auth_token", remoteToken)
		existing.ReplaceConfig(cfg, r.opts.SystemUser)
		changed = true
		result.Updated++
	}
	if !changed {
		return nil
	}
	return r.apps.Update(ctx, existing)
}

func (r *Reconciler) createFromChannel(ctx context.Context, code string, flowObject uuid.UUID, ch integration.Channel, result *SyncResult) error {
	project, err := uuid.Parse(ch.ProjectUUID)
	if err != nil {
		return shared.NewValidationError("channel %s has an invalid project_uuid", ch.UUID)
	}
	a, err := app.NewApp(code, project, app.PlatformWeniFlows, r.opts.SystemUser)
	if err != nil {
		return err
	}
	a.ReplaceConfig(app.Config(ch.Config).Clone(), r.opts.SystemUser)
	a.LinkFlowObject(flowObject)
	a.MarkConfigured()
	if err := r.apps.Create(ctx, a); err != nil {
		return err
	}
	result.Created++
	return nil
}

// withLock runs fn while holding key. It reports false without running fn
// when the lock is held elsewhere.
func (r *Reconciler) withLock(ctx context.Context, key string, fn func(context.Context) error) (bool, error) {
	lock, acquired, err := r.locker.TryAcquire(ctx, key, r.opts.LockTTL)
	if err != nil {
		return false, err
	}
	if !acquired {
		r.logger.Info("Job already running elsewhere", zap.String("lock", key))
		return false, nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("Failed to release lock", zap.String("lock", key), zap.Error(err))
		}
	}()
	return true, fn(ctx)
}
