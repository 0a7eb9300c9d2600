package main

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/the1323/cs166-project-the033-hbai013/internal/email"
	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/health"
	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/prometheus"
	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/router"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/notification"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/messaging"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/messaging/redis"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/worker"
)

func workerCmd(flags *rootFlags) *cobra.Command {
	var cleanup bool
	var cleanupInterval time.Duration

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Publish outbox events to Redis",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			broker, err := redis.NewRedisBroker(ctx, a.cfg.Redis.ToBrokerConfig(), a.log)
			if err != nil {
				return err
			}
			defer broker.Close()

			processor := worker.NewOutboxProcessor(a.store, broker, a.cfg.Outbox.ToWorkerConfig(), a.log, a.metrics)

			var wg sync.WaitGroup
			run := func(fn func(context.Context)) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					fn(ctx)
				}()
			}

			run(processor.Start)
			if cleanup {
				cw := worker.NewOutboxCleanupWorker(a.store.Repos().Outbox, a.cfg.Outbox.Retention, cleanupInterval, a.log, a.metrics)
				run(cw.Start)
			}

			a.log.Info("Worker started", "cleanup", cleanup)
			err = runOps(ctx, a)
			cancel()
			wg.Wait()
			a.log.Info("Worker stopped")
			return err
		}),
	}
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Also delete processed events older than the retention window")
	cmd.Flags().DurationVar(&cleanupInterval, "cleanup-interval", time.Hour, "How often to run the cleanup")
	return cmd
}

func notifyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "E-mail the front desk when a patient is waitlisted",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()

			broker, err := redis.NewRedisBroker(ctx, a.cfg.Redis.ToBrokerConfig(), a.log)
			if err != nil {
				return err
			}
			defer broker.Close()

			svc := notification.NewService(
				a.store.Repos().Doctors,
				email.NewSMTPService(a.cfg.SMTP),
				notification.Config{
					FrontDeskEmail: a.cfg.Notify.FrontDeskEmail,
					CacheTTL:       a.cfg.Notify.CacheTTL,
				},
				a.metrics,
				a.log,
			)

			a.log.Info("Listening for waitlist events", "channel", model.EventAppointmentWaitlisted)
			return serveWhile(ctx, a.log,
				func(ctx context.Context) error { return runOps(ctx, a) },
				func(ctx context.Context) error {
					return messaging.Consume(ctx, broker, model.EventAppointmentWaitlisted, svc.Handle, func(err error) {
						a.log.Error(err, "Failed to handle message")
					})
				},
			)
		}),
	}
}

// serveWhile runs ops in the background for as long as main runs. When main
// returns, for any reason, ops is stopped and waited for.
func serveWhile(ctx context.Context, log *logger.Logger, ops, main func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ops(ctx); err != nil {
			log.Error(err, "Ops server stopped")
		}
	}()

	err := main(ctx)
	cancel()
	wg.Wait()
	return err
}

// runOps serves health and metrics until ctx is done. An empty address
// disables the server.
func runOps(ctx context.Context, a *app) error {
	if a.cfg.Ops.Addr == "" {
		<-ctx.Done()
		return nil
	}
	r := router.NewRouter(
		health.NewHandler(a.db),
		prometheus.New(a.metrics.Registry, metricsNamespace),
		a.log,
	)
	return r.Run(ctx, a.cfg.Ops.Addr)
}
