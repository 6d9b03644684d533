package services

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// SplitCalculatorSvc computes provider/clinic splits without persisting anything.
type SplitCalculatorSvc interface {
	CalculateSplit(ctx context.Context, clinicID, providerID, serviceID string, salePrice decimal.Decimal) (*domain.SplitResult, error)
	SimulateTransactionSplit(ctx context.Context, clinicID string, items []domain.LineItem) (*domain.SplitSimulation, error)

	// BuildCommissionLog returns the PENDING log a line would produce, or nil
	// for lines that do not earn a commission.
	BuildCommissionLog(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error)
}

// CommissionLogSvc stores and reports commission logs.
type CommissionLogSvc interface {
	// LogCommission persists the log built by BuildCommissionLog.
	LogCommission(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error)

	GetCommissionReport(ctx context.Context, clinicID string, month time.Time) (*domain.CommissionReport, error)
	MarkCommissionsPaid(ctx context.Context, clinicID string, req dto.MarkCommissionsPaidRequest) (int64, error)
}

// CommissionRuleSvc manages commission rules.
type CommissionRuleSvc interface {
	CreateRule(ctx context.Context, clinicID string, req dto.CreateCommissionRuleRequest, userID string) (*domain.CommissionRule, error)
	ListRules(ctx context.Context, clinicID string) ([]domain.CommissionRule, error)
	DeleteRule(ctx context.Context, clinicID, ruleID string) error
}

// CommissionSvcFacade combines all commission service interfaces.
type CommissionSvcFacade interface {
	SplitCalculatorSvc
	CommissionLogSvc
	CommissionRuleSvc
}
