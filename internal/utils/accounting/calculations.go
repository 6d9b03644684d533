package accounting

import (
	"fmt"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NaturalBalance presents a debit-positive ledger balance with the sign
// convention of the account type, so a revenue account with credits reads
// positive.
//
// DEBIT-normal: ASSET, EXPENSE (balance as stored)
// CREDIT-normal: LIABILITY, EQUITY, REVENUE (balance negated)
func NaturalBalance(accountType domain.AccountType, balance decimal.Decimal) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return balance, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return balance.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// ValidateEntry checks the double-entry preconditions of a posting.
func ValidateEntry(amount decimal.Decimal, debitAccountID, creditAccountID string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("entry amount must be positive, got %s: %w", amount.String(), apperrors.ErrValidation)
	}
	if debitAccountID == "" || creditAccountID == "" {
		return fmt.Errorf("debit and credit accounts are required: %w", apperrors.ErrValidation)
	}
	if debitAccountID == creditAccountID {
		return fmt.Errorf("debit and credit accounts must differ: %w", apperrors.ErrValidation)
	}
	return nil
}

// TrialBalanceTotals sums debit-positive balances into the debit and credit
// columns of a trial balance. Net is zero when every posting was double-entry.
func TrialBalanceTotals(accounts []domain.Account) (totalDebit, totalCredit, net decimal.Decimal) {
	totalDebit, totalCredit, net = decimal.Zero, decimal.Zero, decimal.Zero
	for _, acc := range accounts {
		net = net.Add(acc.Balance)
		if acc.Balance.IsPositive() {
			totalDebit = totalDebit.Add(acc.Balance)
		} else {
			totalCredit = totalCredit.Add(acc.Balance.Neg())
		}
	}
	return totalDebit, totalCredit, net
}
