// FILE: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"culqi-payments-be/internal/config"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/service"
)

// Scheduler drives the periodic billing and reconciliation sweeps. One
// ticker covers all jobs; each sweep is independent so a failure in one
// never blocks the others.
type Scheduler struct {
	subscriptions service.ISubscriptionService
	transactions  service.ITransactionService
	interval      time.Duration
	reconcileAge  time.Duration
	logger        logger.ILogger
}

func NewScheduler(
	subscriptions service.ISubscriptionService,
	transactions service.ITransactionService,
	cfg *config.Config,
	log logger.ILogger,
) *Scheduler {
	return &Scheduler{
		subscriptions: subscriptions,
		transactions:  transactions,
		interval:      time.Duration(cfg.Billing.SchedulerInterval) * time.Second,
		reconcileAge:  time.Duration(cfg.Billing.ReconcileAfterMins) * time.Minute,
		logger:        log,
	}
}

// Run blocks until the context is cancelled. The first sweep happens
// immediately so a restart never delays billing by a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now().UTC()

	billed, err := s.subscriptions.BillDueSubscriptions(ctx, now)
	if err != nil {
		s.logger.Error("Scheduler", "Billing sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if billed > 0 {
		s.logger.Info("Scheduler", "Billing sweep complete", map[string]interface{}{
			"billed": billed,
		})
	}

	cancelled, err := s.subscriptions.ProcessDeferredCancellations(ctx, now)
	if err != nil {
		s.logger.Error("Scheduler", "Deferred cancellation sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if cancelled > 0 {
		s.logger.Info("Scheduler", "Deferred cancellations processed", map[string]interface{}{
			"cancelled": cancelled,
		})
	}

	reconciled, err := s.transactions.ReconcilePending(ctx, s.reconcileAge)
	if err != nil {
		s.logger.Error("Scheduler", "Pending reconciliation failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if reconciled > 0 {
		s.logger.Info("Scheduler", "Pending transactions reconciled", map[string]interface{}{
			"reconciled": reconciled,
		})
	}
}
