package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleType selects the split arithmetic of a commission rule.
type RuleType string

const (
	RuleFixedProviderValue     RuleType = "FIXED_PROVIDER_VALUE"
	RulePercentageClinicMargin RuleType = "PERCENTAGE_CLINIC_MARGIN"
)

// Labels reported in SplitResult.RuleApplied when no stored rule was used.
const (
	RuleAppliedDefault          = "DEFAULT_NO_RULE"
	RuleAppliedProductOrDefault = "PRODUCT_OR_DEFAULT"
	RuleAppliedManualSplit      = "MANUAL_SPLIT"
)

// CommissionRule describes how a provider's service sale is split with the clinic.
// A nil ServiceID makes the rule the provider's default for every service.
type CommissionRule struct {
	RuleID              string           `json:"ruleID"`
	ClinicID            string           `json:"clinicID"`
	ProviderID          string           `json:"providerID"`
	ServiceID           *string          `json:"serviceID,omitempty"`
	RuleType            RuleType         `json:"ruleType"`
	ProviderFixedValue  *decimal.Decimal `json:"providerFixedValue,omitempty"`
	ClinicMarginPercent *decimal.Decimal `json:"clinicMarginPercent,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	CreatedBy           string           `json:"createdBy"`
}

// CommissionStatus tracks whether a provider has been paid.
type CommissionStatus string

const (
	CommissionPending CommissionStatus = "PENDING"
	CommissionPaid    CommissionStatus = "PAID"
)

// CommissionLog records the split of one sale at the time it happened.
type CommissionLog struct {
	LogID                  string           `json:"logID"`
	ClinicID               string           `json:"clinicID"`
	ProviderID             string           `json:"providerID"`
	ServiceName            string           `json:"serviceName"`
	SalePrice              decimal.Decimal  `json:"salePrice"`
	ProviderAmount         decimal.Decimal  `json:"providerAmount"`
	ClinicAmount           decimal.Decimal  `json:"clinicAmount"`
	Status                 CommissionStatus `json:"status"`
	FinancialTransactionID *string          `json:"financialTransactionID,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
	PaidAt                 *time.Time       `json:"paidAt,omitempty"`
}

// ItemType distinguishes service lines from product lines of a sale.
type ItemType string

const (
	ItemService ItemType = "SERVICE"
	ItemProduct ItemType = "PRODUCT"
)

// LineItem is one line of a sale as received from the point of sale.
type LineItem struct {
	ItemID     string          `json:"itemID,omitempty"`
	Type       ItemType        `json:"type,omitempty"`
	Name       string          `json:"name,omitempty"`
	ProductID  string          `json:"productID,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	ProviderID string          `json:"providerID,omitempty"`
	ServiceID  string          `json:"serviceID,omitempty"`
	Price      decimal.Decimal `json:"price"`
}

// IsCommissionable reports whether the line is a service performed by a provider.
func (i LineItem) IsCommissionable() bool {
	return i.Type == ItemService && i.ProviderID != ""
}

// ConsumesStock reports whether the line deducts inventory.
func (i LineItem) ConsumesStock() bool {
	return i.ProductID != "" && i.Quantity.IsPositive()
}

// SplitResult is the provider/clinic apportionment of one sale price.
type SplitResult struct {
	ItemID         string          `json:"itemID,omitempty"`
	ProviderAmount decimal.Decimal `json:"providerAmount"`
	ClinicAmount   decimal.Decimal `json:"clinicAmount"`
	RuleApplied    string          `json:"ruleApplied"`
	RuleID         string          `json:"ruleID,omitempty"`
}

// ApplyRule splits salePrice according to rule. A nil rule keeps everything
// with the clinic. Amounts are rounded to cents and always sum to the
// rounded sale price. A fixed provider value above the sale price yields a
// negative clinic amount; callers decide whether that is acceptable.
func ApplyRule(rule *CommissionRule, salePrice decimal.Decimal) SplitResult {
	price := RoundMoney(salePrice)
	if rule == nil {
		return SplitResult{
			ProviderAmount: decimal.Zero,
			ClinicAmount:   price,
			RuleApplied:    RuleAppliedDefault,
		}
	}

	var provider, clinic decimal.Decimal
	switch rule.RuleType {
	case RuleFixedProviderValue:
		if rule.ProviderFixedValue != nil {
			provider = RoundMoney(*rule.ProviderFixedValue)
		}
		clinic = price.Sub(provider)
	case RulePercentageClinicMargin:
		margin := decimal.Zero
		if rule.ClinicMarginPercent != nil {
			margin = *rule.ClinicMarginPercent
		}
		clinic = RoundMoney(Percent(price, margin))
		provider = price.Sub(clinic)
	default:
		clinic = price
	}

	return SplitResult{
		ProviderAmount: provider,
		ClinicAmount:   clinic,
		RuleApplied:    string(rule.RuleType),
		RuleID:         rule.RuleID,
	}
}

// SelectRule picks the most specific rule for serviceID: an exact service
// match wins over the provider default. Returns nil when neither exists.
func SelectRule(rules []CommissionRule, serviceID string) *CommissionRule {
	var fallback *CommissionRule
	for i := range rules {
		r := &rules[i]
		if r.ServiceID == nil {
			if fallback == nil {
				fallback = r
			}
			continue
		}
		if serviceID != "" && *r.ServiceID == serviceID {
			return r
		}
	}
	return fallback
}
