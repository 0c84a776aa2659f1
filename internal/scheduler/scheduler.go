// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"

	"skillshare/internal/middleware"
	"skillshare/internal/observability"
	"skillshare/internal/service"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
)

// Scheduler owns the cron runner and its registered jobs.
type Scheduler struct {
	cron            *cron.Cron
	notificationSvc *service.NotificationService
}

// New creates a Scheduler with the notification retention sweep registered
// to run daily at midnight.
func New(notificationSvc *service.NotificationService) (*Scheduler, error) {
	s := &Scheduler{
		cron:            cron.New(),
		notificationSvc: notificationSvc,
	}

	if _, err := s.cron.AddFunc("0 0 * * *", s.sweepNotifications); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	middleware.Logger.Info("Scheduler started")
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepNotifications() {
	span, ctx := observability.NewSpan(context.Background(), "scheduler.notification_sweep")
	defer span.End()

	removed, err := s.notificationSvc.SweepExpired(ctx)
	if err != nil {
		span.SetError(err)
		middleware.Logger.Error("notification retention sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}
	span.AddAttributes(attribute.Int64("notifications.removed", removed))
	middleware.Logger.Info("notification retention sweep completed",
		slog.Int64("removed", removed),
	)
}
