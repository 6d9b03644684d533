package services

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations on the ledger.
type LedgerReaderSvc interface {
	// GetBalance returns the debit-positive balance of an account.
	GetBalance(ctx context.Context, clinicID, accountID string) (decimal.Decimal, error)

	// GetTrialBalance lists every account of the clinic ordered by code, then name.
	GetTrialBalance(ctx context.Context, clinicID string) ([]domain.Account, error)

	// ListEntriesByTransaction returns the postings linked to a financial transaction.
	ListEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// ListUnreversedEntriesByTransaction returns the original postings of a
	// transaction that have not been compensated yet.
	ListUnreversedEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
}

// LedgerWriterSvc defines write operations on the ledger.
type LedgerWriterSvc interface {
	// CreateAccount finds the clinic's account with the given name or creates it.
	CreateAccount(ctx context.Context, clinicID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// RecordEntry posts a double entry and updates both account balances atomically.
	RecordEntry(ctx context.Context, clinicID string, req dto.RecordEntryRequest, userID string) (*domain.LedgerEntry, error)

	// ReverseEntries posts compensating entries for the given originals and
	// returns the ids of the entries that could not be reversed.
	ReverseEntries(ctx context.Context, entries []domain.LedgerEntry, description string, userID string) ([]string, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
