package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
)

// Default chart-of-accounts names used when posting financial transactions.
const (
	CashAccountName           = "Cash/Bank"
	DefaultRevenueAccountName = "Service Revenue"
	DefaultExpenseAccountName = "General Expenses"
)

// ledgerPoster turns a completed financial transaction into its double entry.
type ledgerPoster struct {
	ledger portssvc.LedgerWriterSvc
}

// Post records cash against the category account: INCOME debits cash and
// credits revenue, EXPENSE debits the expense account and credits cash.
func (p ledgerPoster) Post(ctx context.Context, txn domain.FinancialTransaction, userID string) (*domain.LedgerEntry, error) {
	cash, err := p.ledger.CreateAccount(ctx, txn.ClinicID, dto.CreateAccountRequest{
		Name:        CashAccountName,
		AccountType: domain.Asset,
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("cash account: %w", err)
	}

	var req dto.RecordEntryRequest
	switch txn.Type {
	case domain.IncomeTransaction:
		revenue, err := p.ledger.CreateAccount(ctx, txn.ClinicID, dto.CreateAccountRequest{
			Name:        categoryOr(txn.Category, DefaultRevenueAccountName),
			AccountType: domain.Revenue,
		}, userID)
		if err != nil {
			return nil, fmt.Errorf("revenue account: %w", err)
		}
		req = dto.RecordEntryRequest{
			Description:     "Revenue: " + txn.Description,
			DebitAccountID:  cash.AccountID,
			CreditAccountID: revenue.AccountID,
		}
	case domain.ExpenseTransaction:
		expense, err := p.ledger.CreateAccount(ctx, txn.ClinicID, dto.CreateAccountRequest{
			Name:        categoryOr(txn.Category, DefaultExpenseAccountName),
			AccountType: domain.Expense,
		}, userID)
		if err != nil {
			return nil, fmt.Errorf("expense account: %w", err)
		}
		req = dto.RecordEntryRequest{
			Description:     "Expense: " + txn.Description,
			DebitAccountID:  expense.AccountID,
			CreditAccountID: cash.AccountID,
		}
	default:
		return nil, fmt.Errorf("unknown transaction type %q", txn.Type)
	}

	txnID := txn.TransactionID
	txnDate := txn.CreatedAt
	req.Amount = txn.Amount
	req.FinancialTransactionID = &txnID
	req.TransactionDate = &txnDate
	return p.ledger.RecordEntry(ctx, txn.ClinicID, req, userID)
}

func categoryOr(category, fallback string) string {
	if category == "" {
		return fallback
	}
	return category
}
