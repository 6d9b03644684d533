package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultServiceName labels commission logs of lines without a name.
const defaultServiceName = "Service"

// commissionService implements the CommissionSvcFacade interface
type commissionService struct {
	BaseService
	commissionRepo portsrepo.CommissionRepositoryFacade
	clinicRepo     portsrepo.ClinicReader
}

// NewCommissionService creates a new commission service.
func NewCommissionService(repo portsrepo.CommissionRepositoryFacade, clinicRepo portsrepo.ClinicReader) portssvc.CommissionSvcFacade {
	return &commissionService{
		commissionRepo: repo,
		clinicRepo:     clinicRepo,
	}
}

var _ portssvc.CommissionSvcFacade = (*commissionService)(nil)

func (s *commissionService) CalculateSplit(ctx context.Context, clinicID, providerID, serviceID string, salePrice decimal.Decimal) (*domain.SplitResult, error) {
	if salePrice.IsNegative() {
		return nil, fmt.Errorf("sale price cannot be negative: %w", apperrors.ErrValidation)
	}

	rules, err := s.commissionRepo.FindRulesForProvider(ctx, clinicID, providerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load commission rules", slog.String("provider_id", providerID))
		return nil, fmt.Errorf("failed to load commission rules: %w", err)
	}

	split := domain.ApplyRule(domain.SelectRule(rules, serviceID), salePrice)
	if split.ClinicAmount.IsNegative() {
		s.LogWarn(ctx, "Commission rule pays the provider more than the sale price",
			slog.String("provider_id", providerID),
			slog.String("rule_id", split.RuleID),
			slog.String("sale_price", salePrice.String()),
			slog.String("clinic_amount", split.ClinicAmount.String()))
	}
	return &split, nil
}

func (s *commissionService) SimulateTransactionSplit(ctx context.Context, clinicID string, items []domain.LineItem) (*domain.SplitSimulation, error) {
	sim := &domain.SplitSimulation{
		TotalProvider: decimal.Zero,
		TotalClinic:   decimal.Zero,
		Details:       make([]domain.SplitResult, 0, len(items)),
	}
	for _, item := range items {
		var split domain.SplitResult
		if item.IsCommissionable() {
			calculated, err := s.CalculateSplit(ctx, clinicID, item.ProviderID, item.ServiceID, item.Price)
			if err != nil {
				return nil, err
			}
			split = *calculated
		} else {
			split = domain.SplitResult{
				ProviderAmount: decimal.Zero,
				ClinicAmount:   domain.RoundMoney(item.Price),
				RuleApplied:    domain.RuleAppliedProductOrDefault,
			}
		}
		split.ItemID = item.ItemID
		sim.Details = append(sim.Details, split)
		sim.TotalProvider = sim.TotalProvider.Add(split.ProviderAmount)
		sim.TotalClinic = sim.TotalClinic.Add(split.ClinicAmount)
	}
	return sim, nil
}

func (s *commissionService) BuildCommissionLog(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error) {
	if !item.IsCommissionable() {
		return nil, nil
	}
	split, err := s.CalculateSplit(ctx, clinicID, item.ProviderID, item.ServiceID, item.Price)
	if err != nil {
		return nil, err
	}

	name := item.Name
	if name == "" {
		name = defaultServiceName
	}
	return &domain.CommissionLog{
		LogID:                  uuid.NewString(),
		ClinicID:               clinicID,
		ProviderID:             item.ProviderID,
		ServiceName:            name,
		SalePrice:              domain.RoundMoney(item.Price),
		ProviderAmount:         split.ProviderAmount,
		ClinicAmount:           split.ClinicAmount,
		Status:                 domain.CommissionPending,
		FinancialTransactionID: transactionID,
		CreatedAt:              s.now(),
	}, nil
}

func (s *commissionService) LogCommission(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error) {
	log, err := s.BuildCommissionLog(ctx, clinicID, item, transactionID)
	if err != nil || log == nil {
		return nil, err
	}
	if err := s.commissionRepo.SaveLog(ctx, *log); err != nil {
		s.LogError(ctx, err, "Failed to save commission log", slog.String("provider_id", item.ProviderID))
		return nil, fmt.Errorf("failed to save commission log: %w", err)
	}
	return log, nil
}

func (s *commissionService) GetCommissionReport(ctx context.Context, clinicID string, month time.Time) (*domain.CommissionReport, error) {
	start, end := domain.MonthWindow(month)
	logs, err := s.commissionRepo.ListLogsByClinicBetween(ctx, clinicID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission logs: %w", err)
	}

	report := &domain.CommissionReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Summary: domain.CommissionSummary{
			TotalGenerated: decimal.Zero,
			TotalPending:   decimal.Zero,
			TotalPaid:      decimal.Zero,
		},
		ByProvider: []domain.ProviderCommissions{},
	}
	if len(logs) == 0 {
		return report, nil
	}

	index := make(map[string]int)
	var providerIDs []string
	for _, l := range logs {
		if _, seen := index[l.ProviderID]; !seen {
			index[l.ProviderID] = len(report.ByProvider)
			providerIDs = append(providerIDs, l.ProviderID)
			report.ByProvider = append(report.ByProvider, domain.ProviderCommissions{
				ProviderID:    l.ProviderID,
				TotalAmount:   decimal.Zero,
				PendingAmount: decimal.Zero,
				PaidAmount:    decimal.Zero,
			})
		}
		group := &report.ByProvider[index[l.ProviderID]]
		group.TotalAmount = group.TotalAmount.Add(l.ProviderAmount)
		group.Details = append(group.Details, l)
		report.Summary.TotalGenerated = report.Summary.TotalGenerated.Add(l.ProviderAmount)
		switch l.Status {
		case domain.CommissionPending:
			group.PendingAmount = group.PendingAmount.Add(l.ProviderAmount)
			report.Summary.TotalPending = report.Summary.TotalPending.Add(l.ProviderAmount)
		case domain.CommissionPaid:
			group.PaidAmount = group.PaidAmount.Add(l.ProviderAmount)
			report.Summary.TotalPaid = report.Summary.TotalPaid.Add(l.ProviderAmount)
		}
	}

	providers, err := s.clinicRepo.FindProvidersByIDs(ctx, providerIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load provider names for commission report")
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}
	for i := range report.ByProvider {
		if p, ok := providers[report.ByProvider[i].ProviderID]; ok {
			report.ByProvider[i].ProviderName = p.FullName
		}
	}
	return report, nil
}

func (s *commissionService) MarkCommissionsPaid(ctx context.Context, clinicID string, req dto.MarkCommissionsPaidRequest) (int64, error) {
	if len(req.LogIDs) == 0 {
		return 0, fmt.Errorf("at least one commission log is required: %w", apperrors.ErrValidation)
	}
	updated, err := s.commissionRepo.MarkLogsPaid(ctx, clinicID, req.LogIDs, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark commissions paid: %w", err)
	}
	s.LogInfo(ctx, "Commissions marked paid",
		slog.Int("requested", len(req.LogIDs)),
		slog.Int64("updated", updated))
	return updated, nil
}

func (s *commissionService) CreateRule(ctx context.Context, clinicID string, req dto.CreateCommissionRuleRequest, userID string) (*domain.CommissionRule, error) {
	switch req.RuleType {
	case domain.RuleFixedProviderValue:
		if req.ProviderFixedValue == nil || req.ProviderFixedValue.IsNegative() {
			return nil, fmt.Errorf("fixed provider value must be zero or more: %w", apperrors.ErrValidation)
		}
	case domain.RulePercentageClinicMargin:
		if req.ClinicMarginPercent == nil || req.ClinicMarginPercent.IsNegative() ||
			req.ClinicMarginPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("clinic margin must be between 0 and 100: %w", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("unknown rule type %q: %w", req.RuleType, apperrors.ErrValidation)
	}

	provider, err := s.clinicRepo.FindProviderByID(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find provider %s: %w", req.ProviderID, err)
	}
	if provider.ClinicID != clinicID {
		return nil, fmt.Errorf("provider %s not found in clinic: %w", req.ProviderID, apperrors.ErrNotFound)
	}

	serviceID := req.ServiceID
	if serviceID != nil && *serviceID == "" {
		serviceID = nil
	}

	rule := domain.CommissionRule{
		RuleID:     uuid.NewString(),
		ClinicID:   clinicID,
		ProviderID: req.ProviderID,
		ServiceID:  serviceID,
		RuleType:   req.RuleType,
		CreatedAt:  s.now(),
		CreatedBy:  userID,
	}
	if req.RuleType == domain.RuleFixedProviderValue {
		rule.ProviderFixedValue = req.ProviderFixedValue
	} else {
		rule.ClinicMarginPercent = req.ClinicMarginPercent
	}

	if err := s.commissionRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save commission rule", slog.String("provider_id", req.ProviderID))
		return nil, fmt.Errorf("failed to save commission rule: %w", err)
	}
	s.LogInfo(ctx, "Commission rule created", slog.String("rule_id", rule.RuleID))
	return &rule, nil
}

func (s *commissionService) ListRules(ctx context.Context, clinicID string) ([]domain.CommissionRule, error) {
	rules, err := s.commissionRepo.ListRulesByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rules: %w", err)
	}
	return rules, nil
}

func (s *commissionService) DeleteRule(ctx context.Context, clinicID, ruleID string) error {
	if err := s.commissionRepo.DeleteRule(ctx, clinicID, ruleID); err != nil {
		return fmt.Errorf("failed to delete commission rule %s: %w", ruleID, err)
	}
	s.LogInfo(ctx, "Commission rule deleted", slog.String("rule_id", ruleID))
	return nil
}
