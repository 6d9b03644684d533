package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// FinancialTransactionReader defines read operations for financial transactions.
type FinancialTransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error)

	// ListTransactions returns a clinic's transactions, newest first.
	ListTransactions(ctx context.Context, clinicID string, filter domain.TransactionFilter) ([]domain.FinancialTransaction, error)
}

// FinancialTransactionWriter defines write operations for financial transactions.
type FinancialTransactionWriter interface {
	// SaveTransactionWithCommissions inserts the transaction and its commission
	// logs in one database transaction.
	SaveTransactionWithCommissions(ctx context.Context, txn domain.FinancialTransaction, logs []domain.CommissionLog) error

	// UpdateTransactionStatus moves a transaction from expected to next status and
	// sets its description. It returns apperrors.ErrConflict when the stored
	// status is no longer expected.
	UpdateTransactionStatus(ctx context.Context, transactionID string, expected, next domain.TransactionStatus, description string, userID string, now time.Time) error
}

// FinancialTransactionRepositoryFacade combines all transaction repository interfaces.
type FinancialTransactionRepositoryFacade interface {
	FinancialTransactionReader
	FinancialTransactionWriter
}
