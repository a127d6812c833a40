package syncapp

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RefreshArgs are the optional arguments of the refresh tasks. A zero
// AppUUID refreshes every cloud App.
type RefreshArgs struct {
	AppUUID uuid.UUID `json:"app_uuid"`
}

// RefreshResult counts the Apps a refresh job touched
type RefreshResult struct {
	Updated int
	Failed  int
	Skipped bool
}

type refreshFunc func(ctx context.Context, a *app.App) (bool, error)

// RefreshWABAs reloads the template namespace and account name of cloud Apps
func (r *Reconciler) RefreshWABAs(ctx context.Context, args RefreshArgs) (*RefreshResult, error) {
	return r.refresh(ctx, LockSyncWABAs, args, func(ctx context.Context, a *app.App) (bool, error) {
		wabaID := apptype.WABAID(a.Config)
		if wabaID == "" {
			return false, nil
		}
		waba, err := r.wabas.GetWABA(ctx, wabaID)
		if err != nil {
			return false, err
		}
		cfg, err := a.Config.Overlay(struct {
			Namespace string          `json:"wa_message_template_namespace,omitempty"`
			WABA      apptype.WABARef `json:"waba"`
		}{
			Namespace: waba.MessageTemplateNamespace,
			WABA:      apptype.WABARef{ID: wabaID, Name: waba.Name},
		})
		if err != nil {
			return false, err
		}
		a.ReplaceConfig(cfg, r.opts.SystemUser)
		return true, nil
	})
}

// RefreshPhoneNumbers reloads the display number and verified name of cloud Apps
func (r *Reconciler) RefreshPhoneNumbers(ctx context.Context, args RefreshArgs) (*RefreshResult, error) {
	return r.refresh(ctx, LockSyncPhoneNumbers, args, func(ctx context.Context, a *app.App) (bool, error) {
		phoneID := a.Config.GetString("wa_phone_number_id")
		if phoneID == "" {
			return false, nil
		}
		phone, err := r.wabas.GetPhoneNumber(ctx, "", phoneID)
		if err != nil {
			return false, err
		}
		if phone.DisplayPhoneNumber == a.Config.GetString("wa_number") &&
			phone.VerifiedName == a.Config.GetString("wa_verified_name") {
			return false, nil
		}
		cfg := a.Config.Clone()
		cfg.Set("wa_number", phone.DisplayPhoneNumber)
		cfg.Set("wa_verified_name", phone.VerifiedName)
		a.ReplaceConfig(cfg, r.opts.SystemUser)
		return true, nil
	})
}

// refreshLockKey scopes single-App refreshes to that App
func refreshLockKey(key string, args RefreshArgs) string {
	if args.AppUUID == uuid.Nil {
		return key
	}
	return key + ":" + args.AppUUID.String()
}

func (r *Reconciler) refresh(ctx context.Context, key string, args RefreshArgs, fn refreshFunc) (*RefreshResult, error) {
	var updated, failed atomic.Int64
	ran, err := r.withLock(ctx, refreshLockKey(key, args), func(ctx context.Context) error {
		apps, err := r.cloudApps(ctx, args.AppUUID)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Concurrency)
		for _, a := range apps {
			g.Go(func() error {
				changed, err := fn(gctx, a)
				if err == nil && changed {
					err = r.apps.Update(gctx, a)
				}
				if err != nil {
					failed.Add(1)
					r.logger.Warn("Failed to refresh cloud app",
						zap.String("job", key),
						zap.String("app_uuid", a.ID.String()),
						zap.Error(err))
					return nil
				}
				if changed {
					updated.Add(1)
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Updated: int(updated.Load()), Failed: int(failed.Load()), Skipped: !ran}, nil
}

func (r *Reconciler) cloudApps(ctx context.Context, id uuid.UUID) ([]*app.App, error) {
	if id == uuid.Nil {
		return r.apps.FindAll(ctx, app.Filter{Codes: []string{apptype.CodeWhatsAppCloud.String()}})
	}
	a, err := r.apps.FindByID(ctx, id)
	if errors.Is(err, app.ErrAppNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if a.Code != apptype.CodeWhatsAppCloud.String() {
		return nil, nil
	}
	return []*app.App{a}, nil
}

// Handlers maps task names to the jobs of r
func (r *Reconciler) Handlers() map[string]shared.TaskHandler {
	return map[string]shared.TaskHandler{
		shared.TaskSyncWhatsAppApps: shared.TaskHandlerFunc(func(ctx context.Context, _ shared.Task) error {
			_, err := r.SyncApps(ctx)
			return err
		}),
		shared.TaskSyncCloudWABAs: shared.TaskHandlerFunc(func(ctx context.Context, task shared.Task) error {
			var args RefreshArgs
			if err := task.Decode(&args); err != nil {
				return err
			}
			_, err := r.RefreshWABAs(ctx, args)
			return err
		}),
		shared.TaskSyncCloudPhoneNumbers: shared.TaskHandlerFunc(func(ctx context.Context, task shared.Task) error {
			var args RefreshArgs
			if err := task.Decode(&args); err != nil {
				return err
			}
			_, err := r.RefreshPhoneNumbers(ctx, args)
			return err
		}),
	}
}
