package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
)

// ReconciliationWorkerConfig holds configuration for the reconciliation worker
type ReconciliationWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	// ClaimLease hides claimed tasks from other workers while they are replayed.
	ClaimLease time.Duration
}

// DefaultReconciliationWorkerConfig returns default configuration
func DefaultReconciliationWorkerConfig() ReconciliationWorkerConfig {
	return ReconciliationWorkerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    20,
		MaxAttempts:  8,
		BaseBackoff:  30 * time.Second,
		MaxBackoff:   time.Hour,
		ClaimLease:   5 * time.Minute,
	}
}

// ReconciliationWorker replays failed side effects in the background.
type ReconciliationWorker struct {
	repo     portsrepo.ReconciliationRepository
	replayer portssvc.TaskReplayer
	config   ReconciliationWorkerConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconciliationWorker creates a new reconciliation worker
func NewReconciliationWorker(
	repo portsrepo.ReconciliationRepository,
	replayer portssvc.TaskReplayer,
	config ReconciliationWorkerConfig,
	logger *slog.Logger,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		repo:     repo,
		replayer: replayer,
		config:   config,
		logger:   logger.With(slog.String("worker", "reconciliation")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run polls for due tasks until ctx is canceled.
func (w *ReconciliationWorker) Run(ctx context.Context) error {
	w.logger.Info("Reconciliation worker started",
		slog.Int("batch_size", w.config.BatchSize),
		slog.Duration("poll_interval", w.config.PollInterval))

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reconciliation worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Reconciliation batch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce claims one batch of due tasks and replays them. It returns the
// number of tasks processed.
func (w *ReconciliationWorker) RunOnce(ctx context.Context) (int, error) {
	ctx = middleware.WithLogger(ctx, w.logger)

	tasks, err := w.repo.ClaimDueTasks(ctx, w.now(), w.config.ClaimLease, w.config.BatchSize)
	if err != nil {
		return 0, err
	}
	for _, task := range tasks {
		w.process(ctx, task)
	}
	return len(tasks), nil
}

func (w *ReconciliationWorker) process(ctx context.Context, task domain.ReconciliationTask) {
	logger := w.logger.With(
		slog.String("task_id", task.TaskID),
		slog.String("kind", string(task.Kind)),
		slog.String("transaction_id", task.FinancialTransactionID))

	err := w.replayer.Replay(middleware.WithLogger(ctx, logger), task)
	now := w.now()
	task.Attempts++
	task.UpdatedAt = now

	switch {
	case err == nil:
		task.Status = domain.ReconciliationDone
		task.LastError = ""
		logger.Info("Reconciliation task replayed", slog.Int("attempts", task.Attempts))
	case task.Attempts >= w.config.MaxAttempts:
		task.Status = domain.ReconciliationFailed
		task.LastError = err.Error()
		logger.Warn("Reconciliation task moved to dead letter",
			slog.Int("attempts", task.Attempts),
			slog.String("last_error", task.LastError))
	default:
		task.LastError = err.Error()
		task.NextAttemptAt = now.Add(w.backoff(task.Attempts))
		logger.Error("Reconciliation replay failed, will retry",
			slog.Int("attempts", task.Attempts),
			slog.Time("next_attempt_at", task.NextAttemptAt),
			slog.String("error", task.LastError))
	}

	if updateErr := w.repo.UpdateTask(ctx, task); updateErr != nil {
		logger.Error("Failed to update reconciliation task", slog.String("error", updateErr.Error()))
	}
}

// backoff returns BaseBackoff * 2^(attempts-1), capped at MaxBackoff.
func (w *ReconciliationWorker) backoff(attempts int) time.Duration {
	d := w.config.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= w.config.MaxBackoff {
			return w.config.MaxBackoff
		}
	}
	return d
}
