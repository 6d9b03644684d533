package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	IncomeTransaction  TransactionType = "INCOME"
	ExpenseTransaction TransactionType = "EXPENSE"
)

// TransactionStatus is the lifecycle state of a FinancialTransaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCanceled  TransactionStatus = "CANCELED"
)

// CanTransitionTo reports whether moving from s to next is allowed.
// PENDING -> COMPLETED | CANCELED, COMPLETED -> CANCELED. CANCELED is terminal.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusCanceled
	case StatusCompleted:
		return next == StatusCanceled
	}
	return false
}

// CanceledDescriptionPrefix is prepended to the description of canceled transactions.
const CanceledDescriptionPrefix = "[CANCELED] "

// FinancialTransaction is the durable record of a business money event.
// Ledger postings and stock movements are projections of it.
type FinancialTransaction struct {
	TransactionID string            `json:"transactionID"`
	ClinicID      string            `json:"clinicID"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	PaymentMethod string            `json:"paymentMethod"`
	Status        TransactionStatus `json:"status"`
	TutorID       *string           `json:"tutorID,omitempty"`
	PlatformFee   *decimal.Decimal  `json:"platformFee,omitempty"`
	AuditFields
}

// TransactionFilter narrows transaction listings. Empty fields are ignored.
type TransactionFilter struct {
	Status  TransactionStatus
	Type    TransactionType
	TutorID string
	From    *time.Time
	To      *time.Time
}
