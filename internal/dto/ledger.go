package dto

import (
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/SscSPs/vet_clinic_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to find or create a ledger account.
type CreateAccountRequest struct {
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Code        string             `json:"code"` // Optional chart-of-accounts code
}

// RecordEntryRequest defines a single double-entry posting.
type RecordEntryRequest struct {
	Description            string          `json:"description" binding:"required"`
	Amount                 decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
	DebitAccountID         string          `json:"debitAccountID" binding:"required"`
	CreditAccountID        string          `json:"creditAccountID" binding:"required"`
	FinancialTransactionID *string         `json:"financialTransactionID"` // Optional
	TransactionDate        *time.Time      `json:"transactionDate"`        // Optional, defaults to now
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	Code        string             `json:"code,omitempty"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	Balance     string             `json:"balance"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID string `json:"accountID"`
	Balance   string `json:"balance"`
}

// TrialBalanceResponse lists every account of a clinic with the net of all balances.
type TrialBalanceResponse struct {
	Accounts    []AccountResponse `json:"accounts"`
	TotalDebit  string            `json:"totalDebit"`
	TotalCredit string            `json:"totalCredit"`
	Net         string            `json:"net"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID                string    `json:"entryID"`
	Description            string    `json:"description"`
	Amount                 string    `json:"amount"`
	DebitAccountID         string    `json:"debitAccountID"`
	CreditAccountID        string    `json:"creditAccountID"`
	FinancialTransactionID *string   `json:"financialTransactionID,omitempty"`
	ReversesEntryID        *string   `json:"reversesEntryID,omitempty"`
	TransactionDate        time.Time `json:"transactionDate"`
	CreatedAt              time.Time `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   acc.AccountID,
		Code:        acc.Code,
		Name:        acc.Name,
		AccountType: acc.AccountType,
		Balance:     Money(acc.Balance),
		CreatedAt:   acc.CreatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to LedgerEntryResponse DTO.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:                e.EntryID,
		Description:            e.Description,
		Amount:                 Money(e.Amount),
		DebitAccountID:         e.DebitAccountID,
		CreditAccountID:        e.CreditAccountID,
		FinancialTransactionID: e.FinancialTransactionID,
		ReversesEntryID:        e.ReversesEntryID,
		TransactionDate:        e.TransactionDate,
		CreatedAt:              e.CreatedAt,
	}
}

// ToTrialBalanceResponse lists the accounts and sums debit-positive and
// credit-positive balances separately.
func ToTrialBalanceResponse(accounts []domain.Account) TrialBalanceResponse {
	debit, credit, net := accounting.TrialBalanceTotals(accounts)
	return TrialBalanceResponse{
		Accounts:    ToListAccountResponse(accounts),
		TotalDebit:  Money(debit),
		TotalCredit: Money(credit),
		Net:         Money(net),
	}
}
