package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// CommissionRuleRepository manages provider split rules.
type CommissionRuleRepository interface {
	SaveRule(ctx context.Context, rule domain.CommissionRule) error
	DeleteRule(ctx context.Context, clinicID, ruleID string) error
	ListRulesByClinic(ctx context.Context, clinicID string) ([]domain.CommissionRule, error)

	// FindRulesForProvider returns every rule of a provider in a clinic, both
	// service-specific and provider-wide.
	FindRulesForProvider(ctx context.Context, clinicID, providerID string) ([]domain.CommissionRule, error)
}

// CommissionLogRepository stores commission logs.
type CommissionLogRepository interface {
	SaveLog(ctx context.Context, log domain.CommissionLog) error

	// ListLogsByClinicBetween returns logs created in [start, end).
	ListLogsByClinicBetween(ctx context.Context, clinicID string, start, end time.Time) ([]domain.CommissionLog, error)

	// MarkLogsPaid moves PENDING logs to PAID and returns how many changed.
	MarkLogsPaid(ctx context.Context, clinicID string, logIDs []string, paidAt time.Time) (int64, error)
}

// CommissionRepositoryFacade combines all commission repository interfaces.
type CommissionRepositoryFacade interface {
	CommissionRuleRepository
	CommissionLogRepository
}
