package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single double-entry posting: Amount moves from the credit
// account to the debit account. Entries are immutable once stored.
type LedgerEntry struct {
	EntryID                string          `json:"entryID"`
	ClinicID               string          `json:"clinicID"`
	Description            string          `json:"description"`
	Amount                 decimal.Decimal `json:"amount"`
	DebitAccountID         string          `json:"debitAccountID"`
	CreditAccountID        string          `json:"creditAccountID"`
	FinancialTransactionID *string         `json:"financialTransactionID,omitempty"`
	ReversesEntryID        *string         `json:"reversesEntryID,omitempty"`
	TransactionDate        time.Time       `json:"transactionDate"`
	CreatedAt              time.Time       `json:"createdAt"`
	CreatedBy              string          `json:"createdBy"`
}

// Reversal returns the compensating entry for e: same amount with the
// debit and credit accounts swapped, pointing back at e.
func (e LedgerEntry) Reversal(description string, at time.Time) LedgerEntry {
	return LedgerEntry{
		ClinicID:               e.ClinicID,
		Description:            description,
		Amount:                 e.Amount,
		DebitAccountID:         e.CreditAccountID,
		CreditAccountID:        e.DebitAccountID,
		FinancialTransactionID: e.FinancialTransactionID,
		ReversesEntryID:        &e.EntryID,
		TransactionDate:        at,
	}
}
