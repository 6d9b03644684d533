package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five chart-of-accounts types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a ledger account scoped to a clinic.
// Balance is debit-positive: cumulative debits minus cumulative credits,
// regardless of AccountType.
type Account struct {
	AccountID   string          `json:"accountID"`
	ClinicID    string          `json:"clinicID"`
	Code        string          `json:"code"` // Optional chart-of-accounts code, used for ordering
	Name        string          `json:"name"` // Unique per clinic
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}
