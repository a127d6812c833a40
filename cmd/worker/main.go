package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/marketplace/backend/internal/bootstrap"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
	"github.com/marketplace/backend/internal/infrastructure/taskqueue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "worker",
		Short:        "Marketplace background worker",
		Long:         "Consumes the marketplace task queue: channel reconciliation, WhatsApp Cloud refreshes and product feed ingestion.",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCommand(), newEnqueueCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Consume tasks until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				if c.Config.Tasks.Backend == taskqueue.BackendMemory || c.Config.Tasks.Backend == "" {
					return errors.New("the memory task backend is consumed by the server process; set MARKETPLACE_TASKS_BACKEND to redis or kafka")
				}

				if withScheduler {
					sched, err := scheduler.NewScheduler(c.Queue, scheduler.PeriodicJobs(c.Config.Scheduler), c.Config.Scheduler, c.Logger)
					if err != nil {
						return err
					}
					if err := sched.Start(ctx); err != nil {
						return err
					}
					defer func() {
						stopCtx, cancel := context.WithTimeout(context.Background(), c.Config.Scheduler.ShutdownGracePeriod)
						defer cancel()
						_ = sched.Stop(stopCtx)
					}()
				}

				tasks := c.TaskRouter()
				c.Logger.Info("Worker consuming",
					zap.String("backend", c.Config.Tasks.Backend),
					zap.Strings("tasks", tasks.Names()),
					zap.Int("workers", c.Config.Tasks.Workers),
				)
				if err := c.Queue.Consume(ctx, tasks); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				c.Logger.Info("Worker stopped")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "scheduler", false, "also submit the periodic reconciliation jobs")
	return cmd
}

func newEnqueueCommand() *cobra.Command {
	var kwargs string
	cmd := &cobra.Command{
		Use:   "enqueue <task>",
		Short: "Submit one task to the queue",
		Long: "Submit one task by name, e.g. " + shared.TaskSyncWhatsAppApps + ". " +
			"Keyword arguments are passed as a JSON object with --kwargs.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload any
			if kwargs != "" {
				raw := json.RawMessage(kwargs)
				if !json.Valid(raw) {
					return fmt.Errorf("--kwargs is not valid JSON")
				}
				payload = raw
			}
			task, err := shared.NewTask(args[0], payload)
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				if known := c.TaskRouter().Names(); !slices.Contains(known, task.Name) {
					return fmt.Errorf("unknown task %q (known: %v)", task.Name, known)
				}
				enqueueCtx, cancel := context.WithTimeout(ctx, c.Config.Scheduler.EnqueueTimeout)
				defer cancel()
				if err := c.Queue.Enqueue(enqueueCtx, task); err != nil {
					return err
				}
				c.Logger.Info("Task enqueued", zap.String("task", task.Name), zap.String("task_id", task.ID.String()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kwargs, "kwargs", "", "task keyword arguments as a JSON object")
	return cmd
}

// withContainer loads configuration, builds the service graph and runs fn
// with a context cancelled on SIGINT or SIGTERM
func withContainer(parent context.Context, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name + "-worker",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := bootstrap.Build(ctx, cfg, log, Version)
	if err != nil {
		log.Error("Failed to initialize services", zap.Error(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Close(closeCtx); err != nil {
			log.Error("Error closing services", zap.Error(err))
		}
	}()

	return fn(ctx, c)
}
