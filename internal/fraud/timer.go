package fraud

import (
	"context"
	"log/slog"
	"time"
)

// Timer runs the fraud scan on a fixed interval with a per-run deadline.
type Timer struct {
	detector *Detector
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	stop     chan struct{}
}

// NewTimer creates a scan timer.
func NewTimer(detector *Detector, interval, timeout time.Duration, logger *slog.Logger) *Timer {
	return &Timer{
		detector: detector,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins the scan loop. Call in a goroutine.
func (t *Timer) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			t.runScan(ctx)
		}
	}
}

// Stop signals the timer to stop.
func (t *Timer) Stop() {
	select {
	case t.stop <- struct{}{}:
	default:
	}
}

func (t *Timer) runScan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	summary, err := t.detector.RunOnce(scanCtx)
	if err != nil {
		t.logger.Warn("scheduled fraud scan failed", "error", err)
		return
	}
	if summary.AlertsGenerated > 0 {
		t.logger.Info("scheduled fraud scan generated alerts",
			"scan_id", summary.ScanID, "alerts", summary.AlertsGenerated)
	}
}
