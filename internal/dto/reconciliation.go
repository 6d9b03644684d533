package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// ListReconciliationParams filters reconciliation tasks.
type ListReconciliationParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING DONE FAILED"`
}

// ReconciliationTaskResponse defines the data returned for a reconciliation task.
type ReconciliationTaskResponse struct {
	TaskID                 string                      `json:"taskID"`
	FinancialTransactionID string                      `json:"financialTransactionID"`
	Kind                   domain.ReconciliationKind   `json:"kind"`
	Payload                json.RawMessage             `json:"payload" swaggertype:"object"`
	Status                 domain.ReconciliationStatus `json:"status"`
	Attempts               int                         `json:"attempts"`
	LastError              string                      `json:"lastError,omitempty"`
	NextAttemptAt          time.Time                   `json:"nextAttemptAt"`
	CreatedAt              time.Time                   `json:"createdAt"`
	UpdatedAt              time.Time                   `json:"updatedAt"`
}

// ToReconciliationTaskResponses converts tasks to DTOs.
func ToReconciliationTaskResponses(tasks []domain.ReconciliationTask) []ReconciliationTaskResponse {
	res := make([]ReconciliationTaskResponse, len(tasks))
	for i, t := range tasks {
		res[i] = ReconciliationTaskResponse{
			TaskID:                 t.TaskID,
			FinancialTransactionID: t.FinancialTransactionID,
			Kind:                   t.Kind,
			Payload:                t.Payload,
			Status:                 t.Status,
			Attempts:               t.Attempts,
			LastError:              t.LastError,
			NextAttemptAt:          t.NextAttemptAt,
			CreatedAt:              t.CreatedAt,
			UpdatedAt:              t.UpdatedAt,
		}
	}
	return res
}
