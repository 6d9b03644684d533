package dto

import (
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitRuleRequest assigns a fixed amount of the sale to a provider,
// bypassing commission rules.
type SplitRuleRequest struct {
	ProviderID string          `json:"providerID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"gt=0" swaggertype:"string" example:"50.00"`
}

// CreateTransactionRequest defines a financial event entering the orchestrator.
type CreateTransactionRequest struct {
	Type          domain.TransactionType    `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount        decimal.Decimal           `json:"amount" binding:"gt=0" swaggertype:"string" example:"200.00"`
	Description   string                    `json:"description" binding:"required"`
	Category      string                    `json:"category"`
	PaymentMethod string                    `json:"paymentMethod" binding:"required"`
	Status        *domain.TransactionStatus `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	TutorID       *string                   `json:"tutorID"`
	PlatformFee   *decimal.Decimal          `json:"platformFee" swaggertype:"string"`
	SplitRules    []SplitRuleRequest        `json:"splitRules" binding:"omitempty,dive"`
	Items         []LineItemRequest         `json:"items" binding:"omitempty,dive"`
}

// ListTransactionsParams filters the transaction list.
type ListTransactionsParams struct {
	Status  string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED CANCELED"`
	Type    string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	TutorID string `form:"tutorID"`
}

// DashboardParams bounds the financial dashboard. Dates are YYYY-MM-DD.
type DashboardParams struct {
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// PaymentPreferenceRequest prepares a split checkout.
type PaymentPreferenceRequest struct {
	Total decimal.Decimal   `json:"total" binding:"gt=0" swaggertype:"string" example:"300.00"`
	Items []LineItemRequest `json:"items" binding:"omitempty,dive"`
}

// TransactionResponse defines the data returned for a financial transaction.
type TransactionResponse struct {
	TransactionID string                   `json:"transactionID"`
	Type          domain.TransactionType   `json:"type"`
	Amount        string                   `json:"amount"`
	Description   string                   `json:"description"`
	Category      string                   `json:"category"`
	PaymentMethod string                   `json:"paymentMethod"`
	Status        domain.TransactionStatus `json:"status"`
	TutorID       *string                  `json:"tutorID,omitempty"`
	PlatformFee   *string                  `json:"platformFee,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	CreatedBy     string                   `json:"createdBy"`
	LastUpdatedAt time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy string                   `json:"lastUpdatedBy"`
}

// CreateTransactionResponse returns the persisted transaction and any side
// effects left for reconciliation.
type CreateTransactionResponse struct {
	Transaction           TransactionResponse         `json:"transaction"`
	PendingReconciliation []domain.ReconciliationKind `json:"pendingReconciliation"`
}

// ProviderDistributionResponse is one provider share of a payment preference.
type ProviderDistributionResponse struct {
	ProviderID           string `json:"providerID"`
	PayableDestinationID string `json:"payableDestinationID"`
	Amount               string `json:"amount"`
	Reason               string `json:"reason"`
}

// PaymentPreferenceResponse is the checkout split preview.
type PaymentPreferenceResponse struct {
	PreferenceID  string                         `json:"preferenceID"`
	Total         string                         `json:"total"`
	PlatformRate  string                         `json:"platformRate"`
	PlatformFee   string                         `json:"platformFee"`
	Distributions []ProviderDistributionResponse `json:"providers"`
	ClinicNet     string                         `json:"clinicNet"`
}

// DailyTotalsResponse is one chart point of the dashboard.
type DailyTotalsResponse struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// FinancialDashboardResponse summarizes completed transactions.
type FinancialDashboardResponse struct {
	TotalRevenue       string                `json:"totalRevenue"`
	TotalExpenses      string                `json:"totalExpenses"`
	NetProfit          string                `json:"netProfit"`
	PlatformFeesPaid   string                `json:"platformFeesPaid"`
	MarginPercent      string                `json:"marginPercent"`
	ChartData          []DailyTotalsResponse `json:"chartData"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// ToTransactionResponse converts a domain.FinancialTransaction.
func ToTransactionResponse(t *domain.FinancialTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Type:          t.Type,
		Amount:        Money(t.Amount),
		Description:   t.Description,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		TutorID:       t.TutorID,
		PlatformFee:   moneyPtr(t.PlatformFee),
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

// ToListTransactionResponse converts transactions to DTOs.
func ToListTransactionResponse(txns []domain.FinancialTransaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(&t)
	}
	return res
}

// ToPaymentPreferenceResponse converts a domain.PaymentPreference.
func ToPaymentPreferenceResponse(p *domain.PaymentPreference) PaymentPreferenceResponse {
	dist := make([]ProviderDistributionResponse, len(p.Distributions))
	for i, d := range p.Distributions {
		dist[i] = ProviderDistributionResponse{
			ProviderID:           d.ProviderID,
			PayableDestinationID: d.PayableDestinationID,
			Amount:               Money(d.Amount),
			Reason:               d.Reason,
		}
	}
	return PaymentPreferenceResponse{
		PreferenceID:  p.PreferenceID,
		Total:         Money(p.Total),
		PlatformRate:  p.PlatformRate.String(),
		PlatformFee:   Money(p.PlatformFee),
		Distributions: dist,
		ClinicNet:     Money(p.ClinicNet),
	}
}

// ToFinancialDashboardResponse converts a domain.FinancialDashboard.
func ToFinancialDashboardResponse(d *domain.FinancialDashboard) FinancialDashboardResponse {
	chart := make([]DailyTotalsResponse, len(d.ChartData))
	for i, p := range d.ChartData {
		chart[i] = DailyTotalsResponse{Date: p.Date, Income: Money(p.Income), Expense: Money(p.Expense)}
	}
	return FinancialDashboardResponse{
		TotalRevenue:       Money(d.TotalRevenue),
		TotalExpenses:      Money(d.TotalExpenses),
		NetProfit:          Money(d.NetProfit),
		PlatformFeesPaid:   Money(d.PlatformFeesPaid),
		MarginPercent:      d.MarginPercent.StringFixed(1),
		ChartData:          chart,
		RecentTransactions: ToListTransactionResponse(d.RecentTransactions),
	}
}
