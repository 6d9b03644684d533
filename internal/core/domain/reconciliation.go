package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationKind names the side effect a task replays.
type ReconciliationKind string

const (
	ReconcileStockConsumption ReconciliationKind = "STOCK_CONSUMPTION"
	ReconcileLedgerPosting    ReconciliationKind = "LEDGER_POSTING"
	ReconcileLedgerReversal   ReconciliationKind = "LEDGER_REVERSAL"
)

// ReconciliationStatus is the processing state of a task.
type ReconciliationStatus string

const (
	ReconciliationPending ReconciliationStatus = "PENDING"
	ReconciliationDone    ReconciliationStatus = "DONE"
	ReconciliationFailed  ReconciliationStatus = "FAILED"
)

// ReconciliationTask records a best-effort side effect that failed while a
// financial transaction was processed, so it can be retried and audited
// instead of being silently lost.
type ReconciliationTask struct {
	TaskID                 string               `json:"taskID"`
	ClinicID               string               `json:"clinicID"`
	FinancialTransactionID string               `json:"financialTransactionID"`
	Kind                   ReconciliationKind   `json:"kind"`
	Payload                json.RawMessage      `json:"payload"`
	Status                 ReconciliationStatus `json:"status"`
	Attempts               int                  `json:"attempts"`
	LastError              string               `json:"lastError,omitempty"`
	NextAttemptAt          time.Time            `json:"nextAttemptAt"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
}

// StockConsumptionPayload replays one inventory deduction.
type StockConsumptionPayload struct {
	ProductID string          `json:"productID"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	UserID    string          `json:"userID"`
}

// LedgerReversalPayload lists the entries still to be compensated.
type LedgerReversalPayload struct {
	EntryIDs []string `json:"entryIDs"`
}
