package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from domain.TransactionStatus
		to   domain.TransactionStatus
		want bool
	}{
		{domain.StatusPending, domain.StatusCompleted, true},
		{domain.StatusPending, domain.StatusCanceled, true},
		{domain.StatusCompleted, domain.StatusCanceled, true},
		{domain.StatusCompleted, domain.StatusPending, false},
		{domain.StatusCanceled, domain.StatusCanceled, false},
		{domain.StatusCanceled, domain.StatusCompleted, false},
		{domain.StatusPending, domain.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLedgerEntry_Reversal(t *testing.T) {
	txnID := "txn-1"
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	original := domain.LedgerEntry{
		EntryID:                "e1",
		ClinicID:               "c1",
		Amount:                 decimal.NewFromInt(200),
		DebitAccountID:         "cash",
		CreditAccountID:        "revenue",
		FinancialTransactionID: &txnID,
	}

	reversal := original.Reversal("Reversal: Consult", at)

	assert.Equal(t, "revenue", reversal.DebitAccountID)
	assert.Equal(t, "cash", reversal.CreditAccountID)
	assert.True(t, reversal.Amount.Equal(original.Amount))
	assert.Equal(t, "e1", *reversal.ReversesEntryID)
	assert.Equal(t, &txnID, reversal.FinancialTransactionID)
	assert.Equal(t, at, reversal.TransactionDate)
	assert.Empty(t, reversal.EntryID)
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-1.005", "-1.01"},
		{"33.3333", "33.33"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.RoundMoney(decimal.RequireFromString(tt.in)).StringFixed(2))
		})
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := domain.MonthWindow(time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestProvider_CanReceivePayouts(t *testing.T) {
	empty := ""
	dest := "acct_1"
	assert.False(t, domain.Provider{}.CanReceivePayouts())
	assert.False(t, domain.Provider{PayableDestinationID: &empty}.CanReceivePayouts())
	assert.True(t, domain.Provider{PayableDestinationID: &dest}.CanReceivePayouts())
}
