package dto

import (
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Money renders a monetary value with exactly two decimal places.
func Money(d decimal.Decimal) string {
	return domain.RoundMoney(d).StringFixed(domain.MoneyPlaces)
}

// moneyPtr renders an optional monetary value.
func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := Money(*d)
	return &s
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
