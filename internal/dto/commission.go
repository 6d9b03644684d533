package dto

import (
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one sale line. Product lines carry ProductID and
// Quantity; service lines carry Type SERVICE, ProviderID, ServiceID and Price.
type LineItemRequest struct {
	ItemID      string          `json:"id"`
	Type        domain.ItemType `json:"type" binding:"omitempty,oneof=SERVICE PRODUCT"`
	ServiceName string          `json:"serviceName"`
	ProductID   string          `json:"productID"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gte=0" swaggertype:"string" example:"1"`
	ProviderID  string          `json:"providerID"`
	ServiceID   string          `json:"serviceID"`
	Price       decimal.Decimal `json:"price" binding:"gte=0" swaggertype:"string" example:"120.00"`
}

// ToDomain converts the request line to a domain.LineItem.
func (r LineItemRequest) ToDomain() domain.LineItem {
	return domain.LineItem{
		ItemID:     r.ItemID,
		Type:       r.Type,
		Name:       r.ServiceName,
		ProductID:  r.ProductID,
		Quantity:   r.Quantity,
		ProviderID: r.ProviderID,
		ServiceID:  r.ServiceID,
		Price:      r.Price,
	}
}

// ToLineItems converts request lines to domain line items.
func ToLineItems(items []LineItemRequest) []domain.LineItem {
	res := make([]domain.LineItem, len(items))
	for i, it := range items {
		res[i] = it.ToDomain()
	}
	return res
}

// SimulateSplitRequest asks for the estimated split of a sale.
type SimulateSplitRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,dive"`
}

// CommissionReportParams selects the report month as YYYY-MM. Empty means the current month.
type CommissionReportParams struct {
	Month string `form:"month" binding:"omitempty,datetime=2006-01"`
}

// CreateCommissionRuleRequest defines a provider split rule.
type CreateCommissionRuleRequest struct {
	ProviderID          string           `json:"providerID" binding:"required"`
	ServiceID           *string          `json:"serviceID"` // nil makes the rule the provider default
	RuleType            domain.RuleType  `json:"ruleType" binding:"required,oneof=FIXED_PROVIDER_VALUE PERCENTAGE_CLINIC_MARGIN"`
	ProviderFixedValue  *decimal.Decimal `json:"providerFixedValue" swaggertype:"string"`
	ClinicMarginPercent *decimal.Decimal `json:"clinicMarginPercent" swaggertype:"string"`
}

// MarkCommissionsPaidRequest lists commission logs settled with providers.
type MarkCommissionsPaidRequest struct {
	LogIDs []string `json:"logIDs" binding:"required,min=1"`
}

// MarkCommissionsPaidResponse reports how many logs moved to PAID.
type MarkCommissionsPaidResponse struct {
	Updated int64 `json:"updated"`
}

// SplitResultResponse is one line of a split simulation.
type SplitResultResponse struct {
	ItemID         string `json:"itemID,omitempty"`
	ProviderAmount string `json:"providerAmount"`
	ClinicAmount   string `json:"clinicAmount"`
	RuleApplied    string `json:"ruleApplied"`
	RuleID         string `json:"ruleID,omitempty"`
}

// SplitSimulationResponse is the estimated split of a sale.
type SplitSimulationResponse struct {
	TotalProvider string                `json:"totalProvider"`
	TotalClinic   string                `json:"totalClinic"`
	Details       []SplitResultResponse `json:"details"`
}

// CommissionRuleResponse defines the data returned for a rule.
type CommissionRuleResponse struct {
	RuleID              string          `json:"ruleID"`
	ProviderID          string          `json:"providerID"`
	ServiceID           *string         `json:"serviceID,omitempty"`
	RuleType            domain.RuleType `json:"ruleType"`
	ProviderFixedValue  *string         `json:"providerFixedValue,omitempty"`
	ClinicMarginPercent *string         `json:"clinicMarginPercent,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// CommissionLogResponse defines the data returned for a commission log.
type CommissionLogResponse struct {
	LogID                  string                  `json:"logID"`
	ProviderID             string                  `json:"providerID"`
	ServiceName            string                  `json:"serviceName"`
	SalePrice              string                  `json:"salePrice"`
	ProviderAmount         string                  `json:"providerAmount"`
	ClinicAmount           string                  `json:"clinicAmount"`
	Status                 domain.CommissionStatus `json:"status"`
	FinancialTransactionID *string                 `json:"financialTransactionID,omitempty"`
	CreatedAt              time.Time               `json:"createdAt"`
	PaidAt                 *time.Time              `json:"paidAt,omitempty"`
}

// ProviderCommissionsResponse groups a provider's logs.
type ProviderCommissionsResponse struct {
	ProviderID    string                  `json:"providerID"`
	ProviderName  string                  `json:"providerName"`
	TotalAmount   string                  `json:"totalAmount"`
	PendingAmount string                  `json:"pendingAmount"`
	PaidAmount    string                  `json:"paidAmount"`
	Details       []CommissionLogResponse `json:"details"`
}

// CommissionReportResponse is the monthly commission dashboard.
type CommissionReportResponse struct {
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Summary     struct {
		TotalGenerated string `json:"totalGenerated"`
		TotalPending   string `json:"totalPending"`
		TotalPaid      string `json:"totalPaid"`
	} `json:"summary"`
	ByProvider []ProviderCommissionsResponse `json:"byProvider"`
}

// ToSplitSimulationResponse converts a domain.SplitSimulation.
func ToSplitSimulationResponse(s *domain.SplitSimulation) SplitSimulationResponse {
	details := make([]SplitResultResponse, len(s.Details))
	for i, d := range s.Details {
		details[i] = SplitResultResponse{
			ItemID:         d.ItemID,
			ProviderAmount: Money(d.ProviderAmount),
			ClinicAmount:   Money(d.ClinicAmount),
			RuleApplied:    d.RuleApplied,
			RuleID:         d.RuleID,
		}
	}
	return SplitSimulationResponse{
		TotalProvider: Money(s.TotalProvider),
		TotalClinic:   Money(s.TotalClinic),
		Details:       details,
	}
}

// ToCommissionRuleResponse converts a domain.CommissionRule.
func ToCommissionRuleResponse(r *domain.CommissionRule) CommissionRuleResponse {
	res := CommissionRuleResponse{
		RuleID:             r.RuleID,
		ProviderID:         r.ProviderID,
		ServiceID:          r.ServiceID,
		RuleType:           r.RuleType,
		ProviderFixedValue: moneyPtr(r.ProviderFixedValue),
		CreatedAt:          r.CreatedAt,
	}
	if r.ClinicMarginPercent != nil {
		s := r.ClinicMarginPercent.String()
		res.ClinicMarginPercent = &s
	}
	return res
}

// ToListCommissionRuleResponse converts rules to DTOs.
func ToListCommissionRuleResponse(rules []domain.CommissionRule) []CommissionRuleResponse {
	res := make([]CommissionRuleResponse, len(rules))
	for i, r := range rules {
		res[i] = ToCommissionRuleResponse(&r)
	}
	return res
}

// ToCommissionLogResponse converts a domain.CommissionLog.
func ToCommissionLogResponse(l *domain.CommissionLog) CommissionLogResponse {
	return CommissionLogResponse{
		LogID:                  l.LogID,
		ProviderID:             l.ProviderID,
		ServiceName:            l.ServiceName,
		SalePrice:              Money(l.SalePrice),
		ProviderAmount:         Money(l.ProviderAmount),
		ClinicAmount:           Money(l.ClinicAmount),
		Status:                 l.Status,
		FinancialTransactionID: l.FinancialTransactionID,
		CreatedAt:              l.CreatedAt,
		PaidAt:                 l.PaidAt,
	}
}

// ToCommissionReportResponse converts a domain.CommissionReport.
func ToCommissionReportResponse(r *domain.CommissionReport) CommissionReportResponse {
	var res CommissionReportResponse
	res.PeriodStart = r.PeriodStart
	res.PeriodEnd = r.PeriodEnd
	res.Summary.TotalGenerated = Money(r.Summary.TotalGenerated)
	res.Summary.TotalPending = Money(r.Summary.TotalPending)
	res.Summary.TotalPaid = Money(r.Summary.TotalPaid)
	res.ByProvider = make([]ProviderCommissionsResponse, len(r.ByProvider))
	for i, p := range r.ByProvider {
		details := make([]CommissionLogResponse, len(p.Details))
		for j, l := range p.Details {
			details[j] = ToCommissionLogResponse(&l)
		}
		res.ByProvider[i] = ProviderCommissionsResponse{
			ProviderID:    p.ProviderID,
			ProviderName:  p.ProviderName,
			TotalAmount:   Money(p.TotalAmount),
			PendingAmount: Money(p.PendingAmount),
			PaidAmount:    Money(p.PaidAmount),
			Details:       details,
		}
	}
	return res
}
