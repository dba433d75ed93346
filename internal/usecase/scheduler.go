package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentStudio/internal/ports"
)

// Sweeper drops state that expired before now and reports how much it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Maintenance wires the periodic driver with housekeeping jobs such as
// dropping expired rate-limit windows.
type Maintenance struct {
	driver   ports.Scheduler
	sweepers []Sweeper
	logger   *slog.Logger
}

// NewMaintenance returns a helper to start/stop recurring housekeeping.
func NewMaintenance(driver ports.Scheduler, logger *slog.Logger, sweepers ...Sweeper) *Maintenance {
	return &Maintenance{driver: driver, sweepers: sweepers, logger: logger}
}

// Start registers the sweep job with the provided scheduler.
func (m *Maintenance) Start(ctx context.Context) error {
	if m.driver == nil || len(m.sweepers) == 0 {
		return nil
	}
	return m.driver.Start(ctx, m.RunOnce)
}

// RunOnce sweeps every registered store.
func (m *Maintenance) RunOnce(now time.Time) {
	removed := 0
	for _, s := range m.sweepers {
		removed += s.Sweep(now)
	}
	if removed > 0 && m.logger != nil {
		m.logger.Debug("expired limiter windows dropped", "count", removed)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (m *Maintenance) Stop(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}
	return m.driver.Stop(ctx)
}
