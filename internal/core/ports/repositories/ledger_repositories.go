package repositories

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// AccountReader defines read operations for ledger accounts.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByClinic returns the chart of accounts of a clinic ordered by code, then name.
	ListAccountsByClinic(ctx context.Context, clinicID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for ledger accounts.
type AccountWriter interface {
	// FindOrCreateAccount returns the clinic's account with the same name,
	// inserting the given one when none exists. Safe under concurrent calls.
	FindOrCreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
}

// LedgerEntryRepository persists double-entry postings.
type LedgerEntryRepository interface {
	// SaveEntry inserts the entry and applies it to both account balances
	// (debit += amount, credit -= amount) in one database transaction.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// ListEntriesByTransaction returns the entries linked to a financial transaction, oldest first.
	ListEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// ListUnreversedEntriesByTransaction returns the original (non-reversal) entries
	// of a transaction that have no compensating entry yet.
	ListUnreversedEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	AccountReader
	AccountWriter
	LedgerEntryRepository
}
