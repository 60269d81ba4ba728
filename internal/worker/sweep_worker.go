package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/service"
)

// SweepWorker runs the pending-assignment sweep on a fixed cadence so that
// incidents queued while every skilled technician was saturated get picked up
// as capacity frees.
type SweepWorker struct {
	sweeper  *service.SweepService
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
	cron     *cron.Cron
}

// NewSweepWorker constructs the worker.
func NewSweepWorker(sweeper *service.SweepService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *SweepWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SweepWorker{
		sweeper:  sweeper,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start schedules the sweep and begins execution.
func (w *SweepWorker) Start() error {
	spec := fmt.Sprintf("@every %s", w.interval)
	if _, err := w.cron.AddFunc(spec, w.runOnce); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("pending sweep scheduled", zap.Duration("interval", w.interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (w *SweepWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *SweepWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	assigned, err := w.sweeper.RunPendingSweep(ctx)
	w.metrics.RecordSweep(assigned)
	if err != nil {
		w.logger.Warn("pending sweep finished with error",
			zap.Int("assigned", assigned),
			zap.Error(err))
		return
	}
	if assigned > 0 {
		w.logger.Info("pending sweep assigned incidents", zap.Int("assigned", assigned))
	}
}
