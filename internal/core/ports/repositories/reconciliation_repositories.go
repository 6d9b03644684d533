package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// ReconciliationRepository persists pending side effects.
type ReconciliationRepository interface {
	SaveTask(ctx context.Context, task domain.ReconciliationTask) error

	// ClaimDueTasks returns up to limit PENDING tasks due at now and pushes their
	// next attempt forward by lease, so concurrent workers skip them.
	ClaimDueTasks(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.ReconciliationTask, error)

	// UpdateTask stores the outcome of an attempt (status, attempts, error, next attempt).
	UpdateTask(ctx context.Context, task domain.ReconciliationTask) error

	// ListTasks returns a clinic's tasks, optionally filtered by status, newest first.
	ListTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error)
}
