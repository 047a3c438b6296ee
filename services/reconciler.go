package services

import (
	"context"
	"crm/database"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DEFAULT_RECONCILE_SCHEDULE = "@every 5m"

// Reconciler periodically recomputes every pipeline's aggregates, repairing
// stats left stale by a failure between a deal write and its stats write.
type Reconciler struct {
	cron   *cron.Cron
	stats  *StatsSynchronizer
	logger *zap.Logger
}

func NewReconciler(stats *StatsSynchronizer, schedule string, logger *zap.Logger) (*Reconciler, error) {
	if schedule == "" {
		schedule = DEFAULT_RECONCILE_SCHEDULE
	}

	r := &Reconciler{
		cron:   cron.New(),
		stats:  stats,
		logger: logger,
	}

	if _, err := r.cron.AddFunc(schedule, r.Run); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	return r, nil
}

func (r *Reconciler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), database.MONGO_TIMEOUT)
	defer cancel()

	visited := r.stats.RecomputeAll(ctx)
	r.logger.Debug("pipeline stats reconciled", zap.Int("pipelines", visited))
}

func (r *Reconciler) Start() {
	r.cron.Start()
}

// Stop waits for a running reconcile to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}
