package services

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
)

// CreateTransactionResult is the outcome of a create: the persisted
// transaction and the side effects left to the reconciliation worker.
type CreateTransactionResult struct {
	Transaction           domain.FinancialTransaction
	PendingReconciliation []domain.ReconciliationKind
}

// TransactionReaderSvc defines read operations on financial transactions.
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, clinicID, transactionID string) (*domain.FinancialTransaction, error)
	ListTransactions(ctx context.Context, clinicID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error)

	// GetFinancialDashboard aggregates COMPLETED transactions between start and end (inclusive days).
	GetFinancialDashboard(ctx context.Context, clinicID string, start, end *time.Time) (*domain.FinancialDashboard, error)
}

// TransactionWriterSvc orchestrates financial events and their side effects.
type TransactionWriterSvc interface {
	Create(ctx context.Context, clinicID string, req dto.CreateTransactionRequest, userID string) (*CreateTransactionResult, error)
	CompleteTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error)
	CancelTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error)
}

// PaymentPreferenceSvc previews split payments.
type PaymentPreferenceSvc interface {
	CreatePaymentPreference(ctx context.Context, clinicID string, req dto.PaymentPreferenceRequest) (*domain.PaymentPreference, error)
}

// TransactionSvcFacade combines all transaction service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	PaymentPreferenceSvc
}
