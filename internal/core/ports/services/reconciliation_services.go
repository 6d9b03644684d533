package services

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// ReconciliationReaderSvc exposes pending and dead-lettered side effects.
type ReconciliationReaderSvc interface {
	ListReconciliationTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error)
}

// ReconciliationRecorderSvc records a failed side effect for later replay.
type ReconciliationRecorderSvc interface {
	Enqueue(ctx context.Context, clinicID, transactionID string, kind domain.ReconciliationKind, payload any, cause error) error
}

// TaskReplayer re-applies the side effect described by a task.
type TaskReplayer interface {
	Replay(ctx context.Context, task domain.ReconciliationTask) error
}

// ReconciliationSvcFacade combines all reconciliation service interfaces.
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationRecorderSvc
	TaskReplayer
}
