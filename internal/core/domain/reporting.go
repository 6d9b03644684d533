package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitSimulation is the estimated split of a whole sale before payment.
type SplitSimulation struct {
	TotalProvider decimal.Decimal `json:"totalProvider"`
	TotalClinic   decimal.Decimal `json:"totalClinic"`
	Details       []SplitResult   `json:"details"`
}

// CommissionSummary aggregates provider amounts of a period.
type CommissionSummary struct {
	TotalGenerated decimal.Decimal `json:"totalGenerated"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
}

// ProviderCommissions groups one provider's logs of a period.
type ProviderCommissions struct {
	ProviderID    string          `json:"providerID"`
	ProviderName  string          `json:"providerName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Details       []CommissionLog `json:"details"`
}

// CommissionReport is the monthly commission dashboard of a clinic.
type CommissionReport struct {
	PeriodStart time.Time             `json:"periodStart"`
	PeriodEnd   time.Time             `json:"periodEnd"`
	Summary     CommissionSummary     `json:"summary"`
	ByProvider  []ProviderCommissions `json:"byProvider"`
}

// MonthWindow returns the half-open [start, end) interval of the calendar
// month containing t, in t's location.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// ProviderDistribution is one provider's share of a split payment.
type ProviderDistribution struct {
	ProviderID           string          `json:"providerID"`
	PayableDestinationID string          `json:"payableDestinationID"`
	Amount               decimal.Decimal `json:"amount"`
	Reason               string          `json:"reason"`
}

// PaymentPreference is the split preview prepared for checkout.
type PaymentPreference struct {
	PreferenceID  string                 `json:"preferenceID"`
	Total         decimal.Decimal        `json:"total"`
	PlatformRate  decimal.Decimal        `json:"platformRate"`
	PlatformFee   decimal.Decimal        `json:"platformFee"`
	Distributions []ProviderDistribution `json:"providers"`
	ClinicNet     decimal.Decimal        `json:"clinicNet"`
}

// DailyTotals is one point of the dashboard chart.
type DailyTotals struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// FinancialDashboard summarizes completed transactions of a period.
type FinancialDashboard struct {
	TotalRevenue       decimal.Decimal        `json:"totalRevenue"`
	TotalExpenses      decimal.Decimal        `json:"totalExpenses"`
	NetProfit          decimal.Decimal        `json:"netProfit"`
	PlatformFeesPaid   decimal.Decimal        `json:"platformFeesPaid"`
	MarginPercent      decimal.Decimal        `json:"marginPercent"`
	ChartData          []DailyTotals          `json:"chartData"`
	RecentTransactions []FinancialTransaction `json:"recentTransactions"`
}
