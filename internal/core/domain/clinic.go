package domain

import "github.com/shopspring/decimal"

// Clinic is the tenant record as seen by the financial core. It is owned by
// the tenant administration module and only read here.
type Clinic struct {
	ClinicID        string           `json:"clinicID"`
	Name            string           `json:"name"`
	PlatformFeeRate *decimal.Decimal `json:"platformFeeRate,omitempty"` // percent, nil means platform default
}

// Provider is a professional who performs services and may receive commissions.
type Provider struct {
	ProviderID           string           `json:"providerID"`
	ClinicID             string           `json:"clinicID"`
	FullName             string           `json:"fullName"`
	PayableDestinationID *string          `json:"payableDestinationID,omitempty"` // payment-gateway recipient id
	CommissionRate       *decimal.Decimal `json:"commissionRate,omitempty"`       // percent of price, used when no rule exists
}

// CanReceivePayouts reports whether the provider has a destination for split payments.
func (p Provider) CanReceivePayouts() bool {
	return p.PayableDestinationID != nil && *p.PayableDestinationID != ""
}
