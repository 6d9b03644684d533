package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
)

// LowStockSweepLockKey names the lock that keeps one instance sweeping at a time.
const LowStockSweepLockKey = "vet_clinic:low_stock_sweep"

// LowStockSweeper periodically alerts clinics about products at or below
// their minimum stock. A product is alerted once per breach; it alerts again
// only after recovering and breaching anew.
type LowStockSweeper struct {
	checker  portssvc.LowStockChecker
	notifier portssvc.Notifier
	deduper  portssvc.AlertDeduper
	locker   portssvc.SweepLocker
	interval time.Duration
	logger   *slog.Logger
}

// NewLowStockSweeper creates a sweeper. locker may be nil for single-instance deployments.
func NewLowStockSweeper(
	checker portssvc.LowStockChecker,
	notifier portssvc.Notifier,
	deduper portssvc.AlertDeduper,
	locker portssvc.SweepLocker,
	interval time.Duration,
	logger *slog.Logger,
) *LowStockSweeper {
	return &LowStockSweeper{
		checker:  checker,
		notifier: notifier,
		deduper:  deduper,
		locker:   locker,
		interval: interval,
		logger:   logger.With(slog.String("worker", "low_stock_sweeper")),
	}
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (s *LowStockSweeper) Run(ctx context.Context) error {
	s.logger.Info("Low stock sweeper started", slog.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Low stock sweep failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Low stock sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep and returns how many alerts were delivered.
// Delivery failures are logged and the product stays eligible for the next sweep.
func (s *LowStockSweeper) RunOnce(ctx context.Context) (int, error) {
	ctx = middleware.WithLogger(ctx, s.logger)

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, LowStockSweepLockKey)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.logger.Debug("Another instance holds the sweep lock, skipping")
			return 0, nil
		}
		defer release()
	}

	alerts, err := s.checker.CheckLowStock(ctx)
	if err != nil {
		return 0, err
	}

	breached := make([]string, len(alerts))
	for i, a := range alerts {
		breached[i] = a.ProductID
	}
	fresh, err := s.deduper.NewBreaches(ctx, breached)
	if err != nil {
		return 0, err
	}
	isFresh := make(map[string]bool, len(fresh))
	for _, id := range fresh {
		isFresh[id] = true
	}

	sent := 0
	var undelivered []string
	for _, alert := range alerts {
		if !isFresh[alert.ProductID] {
			continue
		}
		if err := s.notifier.NotifyLowStock(ctx, alert); err != nil {
			s.logger.Error("Failed to deliver low stock alert",
				slog.String("clinic_id", alert.ClinicID),
				slog.String("product_id", alert.ProductID),
				slog.String("error", err.Error()))
			undelivered = append(undelivered, alert.ProductID)
			continue
		}
		sent++
	}

	if len(undelivered) > 0 {
		if err := s.deduper.Forget(ctx, undelivered); err != nil {
			s.logger.Error("Failed to reset alert marks", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("Low stock sweep finished",
		slog.Int("breached", len(alerts)),
		slog.Int("alerted", sent))
	return sent, nil
}
