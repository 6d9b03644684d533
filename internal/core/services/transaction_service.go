package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	manualSplitServiceName = "Manual split"
	recentTransactionCount = 5
)

// transactionService orchestrates a financial event: the transaction and its
// commissions are stored atomically, then stock and ledger effects are
// applied best-effort with failures handed to reconciliation.
type transactionService struct {
	BaseService
	txnRepo        portsrepo.FinancialTransactionRepositoryFacade
	clinicRepo     portsrepo.ClinicReader
	commission     portssvc.CommissionSvcFacade
	inventory      portssvc.StockWriterSvc
	ledger         portssvc.LedgerSvcFacade
	reconciliation portssvc.ReconciliationRecorderSvc
	audit          portssvc.AuditRecorder
	defaultFeeRate decimal.Decimal
}

// TransactionOption is a functional option for configuring the transaction service
type TransactionOption func(*transactionService)

// WithAuditRecorder sets the audit log collaborator.
func WithAuditRecorder(audit portssvc.AuditRecorder) TransactionOption {
	return func(s *transactionService) {
		s.audit = audit
	}
}

// WithDefaultPlatformFeeRate sets the fee percent used for clinics without their own rate.
func WithDefaultPlatformFeeRate(rate decimal.Decimal) TransactionOption {
	return func(s *transactionService) {
		s.defaultFeeRate = rate
	}
}

// NewTransactionService creates a new transaction orchestrator.
func NewTransactionService(
	txnRepo portsrepo.FinancialTransactionRepositoryFacade,
	clinicRepo portsrepo.ClinicReader,
	commission portssvc.CommissionSvcFacade,
	inventory portssvc.StockWriterSvc,
	ledger portssvc.LedgerSvcFacade,
	reconciliation portssvc.ReconciliationRecorderSvc,
	options ...TransactionOption,
) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		txnRepo:        txnRepo,
		clinicRepo:     clinicRepo,
		commission:     commission,
		inventory:      inventory,
		ledger:         ledger,
		reconciliation: reconciliation,
		defaultFeeRate: decimal.NewFromInt(5),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) Create(ctx context.Context, clinicID string, req dto.CreateTransactionRequest, userID string) (*portssvc.CreateTransactionResult, error) {
	if req.Type != domain.IncomeTransaction && req.Type != domain.ExpenseTransaction {
		return nil, fmt.Errorf("invalid transaction type %q: %w", req.Type, apperrors.ErrValidation)
	}
	amount := domain.RoundMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("transaction amount must be at least 0.01: %w", apperrors.ErrValidation)
	}
	status := domain.StatusCompleted
	if req.Status != nil {
		status = *req.Status
	}
	if status != domain.StatusCompleted && status != domain.StatusPending {
		return nil, fmt.Errorf("transactions start as PENDING or COMPLETED, got %q: %w", status, apperrors.ErrValidation)
	}

	now := s.now()
	txn := domain.FinancialTransaction{
		TransactionID: uuid.NewString(),
		ClinicID:      clinicID,
		Type:          req.Type,
		Amount:        amount,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		TutorID:       req.TutorID,
		PlatformFee:   req.PlatformFee,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	logs, err := s.buildCommissionLogs(ctx, clinicID, txn.TransactionID, req, now)
	if err != nil {
		return nil, err
	}

	if err := s.txnRepo.SaveTransactionWithCommissions(ctx, txn, logs); err != nil {
		s.LogError(ctx, err, "Failed to save financial transaction", slog.String("clinic_id", clinicID))
		return nil, fmt.Errorf("failed to save financial transaction: %w", err)
	}

	result := &portssvc.CreateTransactionResult{Transaction: txn}

	reason := saleReason(txn.TransactionID)
	for _, item := range dto.ToLineItems(req.Items) {
		if !item.ConsumesStock() {
			continue
		}
		_, err := s.inventory.Consume(ctx, clinicID, dto.ConsumeRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Reason:    reason,
		}, userID)
		if err != nil {
			s.LogError(ctx, err, "Stock consumption failed after sale",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("product_id", item.ProductID))
			s.deferSideEffect(ctx, result, domain.ReconcileStockConsumption, domain.StockConsumptionPayload{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    reason,
				UserID:    userID,
			}, err)
		}
	}

	if txn.Status == domain.StatusCompleted {
		if err := s.postLedger(ctx, txn, userID); err != nil {
			s.LogError(ctx, err, "Ledger posting failed after sale",
				slog.String("transaction_id", txn.TransactionID))
			s.deferSideEffect(ctx, result, domain.ReconcileLedgerPosting, struct{}{}, err)
		}
	}

	s.recordAudit(ctx, clinicID, userID, "CREATE", txn.TransactionID, map[string]any{
		"type":                  string(txn.Type),
		"amount":                txn.Amount.String(),
		"status":                string(txn.Status),
		"commissionLogs":        len(logs),
		"pendingReconciliation": result.PendingReconciliation,
	})

	s.LogInfo(ctx, "Financial transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("commission_logs", len(logs)),
		slog.Int("pending_reconciliation", len(result.PendingReconciliation)))
	return result, nil
}

func (s *transactionService) buildCommissionLogs(ctx context.Context, clinicID, txnID string, req dto.CreateTransactionRequest, now time.Time) ([]domain.CommissionLog, error) {
	var logs []domain.CommissionLog
	for _, split := range req.SplitRules {
		amount := domain.RoundMoney(split.Amount)
		if !amount.IsPositive() || split.ProviderID == "" {
			return nil, fmt.Errorf("split rules need a provider and a positive amount: %w", apperrors.ErrValidation)
		}
		id := txnID
		logs = append(logs, domain.CommissionLog{
			LogID:                  uuid.NewString(),
			ClinicID:               clinicID,
			ProviderID:             split.ProviderID,
			ServiceName:            manualSplitServiceName,
			SalePrice:              amount,
			ProviderAmount:         amount,
			ClinicAmount:           decimal.Zero,
			Status:                 domain.CommissionPending,
			FinancialTransactionID: &id,
			CreatedAt:              now,
		})
	}

	for _, item := range dto.ToLineItems(req.Items) {
		id := txnID
		log, err := s.commission.BuildCommissionLog(ctx, clinicID, item, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to compute commission for item %s: %w", item.ItemID, err)
		}
		if log != nil {
			logs = append(logs, *log)
		}
	}
	return logs, nil
}

// deferSideEffect records a reconciliation task and notes its kind on the result.
func (s *transactionService) deferSideEffect(ctx context.Context, result *portssvc.CreateTransactionResult, kind domain.ReconciliationKind, payload any, cause error) {
	result.PendingReconciliation = append(result.PendingReconciliation, kind)
	txn := result.Transaction
	if err := s.reconciliation.Enqueue(ctx, txn.ClinicID, txn.TransactionID, kind, payload, cause); err != nil {
		s.LogError(ctx, err, "Side effect lost: reconciliation task could not be stored",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("kind", string(kind)))
	}
}

func saleReason(transactionID string) string {
	short := transactionID
	if len(short) > 8 {
		short = short[:8]
	}
	return "Sale #Tx-" + short
}

func (s *transactionService) loadOwned(ctx context.Context, clinicID, transactionID string) (*domain.FinancialTransaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if txn.ClinicID != clinicID {
		return nil, fmt.Errorf("transaction %s not found in clinic: %w", transactionID, apperrors.ErrNotFound)
	}
	return txn, nil
}

func (s *transactionService) CompleteTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error) {
	txn, err := s.loadOwned(ctx, clinicID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("transaction is %s, only PENDING can complete: %w", txn.Status, apperrors.ErrConflict)
	}

	now := s.now()
	if err := s.txnRepo.UpdateTransactionStatus(ctx, txn.TransactionID, domain.StatusPending, domain.StatusCompleted, txn.Description, userID, now); err != nil {
		return nil, fmt.Errorf("failed to complete transaction: %w", err)
	}
	txn.Status = domain.StatusCompleted
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	if err := s.postLedger(ctx, *txn, userID); err != nil {
		s.LogError(ctx, err, "Ledger posting failed on completion", slog.String("transaction_id", txn.TransactionID))
		if qErr := s.reconciliation.Enqueue(ctx, clinicID, txn.TransactionID, domain.ReconcileLedgerPosting, struct{}{}, err); qErr != nil {
			s.LogError(ctx, qErr, "Side effect lost: reconciliation task could not be stored")
		}
	}

	s.recordAudit(ctx, clinicID, userID, "COMPLETE", txn.TransactionID, nil)
	return txn, nil
}

func (s *transactionService) CancelTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error) {
	txn, err := s.loadOwned(ctx, clinicID, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Status.CanTransitionTo(domain.StatusCanceled) {
		return nil, fmt.Errorf("transaction already canceled: %w", apperrors.ErrConflict)
	}

	previous := txn.Status
	now := s.now()
	description := domain.CanceledDescriptionPrefix + txn.Description
	if err := s.txnRepo.UpdateTransactionStatus(ctx, txn.TransactionID, previous, domain.StatusCanceled, description, userID, now); err != nil {
		return nil, fmt.Errorf("failed to cancel transaction: %w", err)
	}
	txn.Status = domain.StatusCanceled
	txn.Description = description
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	if previous == domain.StatusCompleted {
		s.reverseLedger(ctx, txn, userID)
	}

	s.recordAudit(ctx, clinicID, userID, "CANCEL", txn.TransactionID, map[string]any{
		"previousStatus": string(previous),
	})
	s.LogInfo(ctx, "Financial transaction canceled", slog.String("transaction_id", txn.TransactionID))
	return txn, nil
}

// postLedger posts the double entry of a completed transaction. A cancel
// that committed while the entry was being written found nothing to reverse,
// so the status is read again afterwards and the new entry compensated here.
func (s *transactionService) postLedger(ctx context.Context, txn domain.FinancialTransaction, userID string) error {
	if _, err := (ledgerPoster{ledger: s.ledger}).Post(ctx, txn, userID); err != nil {
		return err
	}

	latest, err := s.txnRepo.FindTransactionByID(ctx, txn.TransactionID)
	if err != nil {
		s.LogError(ctx, err, "Could not confirm status after posting", slog.String("transaction_id", txn.TransactionID))
		// Replay reverses only if the transaction turns out canceled.
		if qErr := s.reconciliation.Enqueue(ctx, txn.ClinicID, txn.TransactionID, domain.ReconcileLedgerReversal, domain.LedgerReversalPayload{}, err); qErr != nil {
			s.LogError(ctx, qErr, "Side effect lost: reconciliation task could not be stored")
		}
		return nil
	}
	if latest.Status == domain.StatusCanceled {
		s.LogWarn(ctx, "Transaction canceled while posting, reversing new entry", slog.String("transaction_id", txn.TransactionID))
		s.reverseLedger(ctx, latest, userID)
	}
	return nil
}

// reverseLedger compensates the postings of a canceled transaction. Entries
// that cannot be reversed now are handed to reconciliation.
func (s *transactionService) reverseLedger(ctx context.Context, txn *domain.FinancialTransaction, userID string) {
	entries, err := s.ledger.ListUnreversedEntriesByTransaction(ctx, txn.TransactionID)
	if err != nil {
		s.LogError(ctx, err, "Could not load postings to reverse", slog.String("transaction_id", txn.TransactionID))
		if qErr := s.reconciliation.Enqueue(ctx, txn.ClinicID, txn.TransactionID, domain.ReconcileLedgerReversal, domain.LedgerReversalPayload{}, err); qErr != nil {
			s.LogError(ctx, qErr, "Side effect lost: reconciliation task could not be stored")
		}
		return
	}
	if len(entries) == 0 {
		return
	}

	failed, err := s.ledger.ReverseEntries(ctx, entries, reversalDescription(txn), userID)
	if err != nil {
		if qErr := s.reconciliation.Enqueue(ctx, txn.ClinicID, txn.TransactionID, domain.ReconcileLedgerReversal, domain.LedgerReversalPayload{EntryIDs: failed}, err); qErr != nil {
			s.LogError(ctx, qErr, "Side effect lost: reconciliation task could not be stored")
		}
	}
}

func (s *transactionService) recordAudit(ctx context.Context, clinicID, userID, action, transactionID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, domain.AuditEvent{
		ClinicID:   clinicID,
		UserID:     userID,
		Action:     action,
		EntityType: "FINANCIAL_TRANSACTION",
		EntityID:   transactionID,
		Details:    details,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record audit event",
			slog.String("action", action),
			slog.String("transaction_id", transactionID))
	}
}

func (s *transactionService) GetTransaction(ctx context.Context, clinicID, transactionID string) (*domain.FinancialTransaction, error) {
	return s.loadOwned(ctx, clinicID, transactionID)
}

func (s *transactionService) ListTransactions(ctx context.Context, clinicID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	filter := domain.TransactionFilter{
		Status:  domain.TransactionStatus(params.Status),
		Type:    domain.TransactionType(params.Type),
		TutorID: params.TutorID,
	}
	txns, err := s.txnRepo.ListTransactions(ctx, clinicID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (s *transactionService) GetFinancialDashboard(ctx context.Context, clinicID string, start, end *time.Time) (*domain.FinancialDashboard, error) {
	filter := domain.TransactionFilter{Status: domain.StatusCompleted, From: start}
	if end != nil {
		to := end.AddDate(0, 0, 1)
		filter.To = &to
	}
	txns, err := s.txnRepo.ListTransactions(ctx, clinicID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for dashboard: %w", err)
	}

	dash := &domain.FinancialDashboard{
		TotalRevenue:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
		PlatformFeesPaid: decimal.Zero,
		MarginPercent:    decimal.Zero,
		ChartData:        []domain.DailyTotals{},
	}
	days := make(map[string]*domain.DailyTotals)
	for _, t := range txns {
		day := t.CreatedAt.UTC().Format("2006-01-02")
		point, ok := days[day]
		if !ok {
			point = &domain.DailyTotals{Date: day, Income: decimal.Zero, Expense: decimal.Zero}
			days[day] = point
		}
		switch t.Type {
		case domain.IncomeTransaction:
			dash.TotalRevenue = dash.TotalRevenue.Add(t.Amount)
			point.Income = point.Income.Add(t.Amount)
		case domain.ExpenseTransaction:
			dash.TotalExpenses = dash.TotalExpenses.Add(t.Amount)
			point.Expense = point.Expense.Add(t.Amount)
		}
		if t.PlatformFee != nil {
			dash.PlatformFeesPaid = dash.PlatformFeesPaid.Add(*t.PlatformFee)
		}
	}

	dash.NetProfit = dash.TotalRevenue.Sub(dash.TotalExpenses)
	if dash.TotalRevenue.IsPositive() {
		dash.MarginPercent = dash.NetProfit.Div(dash.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(1)
	}
	for _, p := range days {
		dash.ChartData = append(dash.ChartData, *p)
	}
	sort.Slice(dash.ChartData, func(i, j int) bool { return dash.ChartData[i].Date < dash.ChartData[j].Date })

	recent := txns
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}
	dash.RecentTransactions = recent
	return dash, nil
}

func (s *transactionService) CreatePaymentPreference(ctx context.Context, clinicID string, req dto.PaymentPreferenceRequest) (*domain.PaymentPreference, error) {
	if !req.Total.IsPositive() {
		return nil, fmt.Errorf("payment total must be positive: %w", apperrors.ErrValidation)
	}
	clinic, err := s.clinicRepo.FindClinicByID(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to find clinic %s: %w", clinicID, err)
	}

	rate := s.defaultFeeRate
	if clinic.PlatformFeeRate != nil {
		rate = *clinic.PlatformFeeRate
	}
	total := domain.RoundMoney(req.Total)
	fee := domain.RoundMoney(domain.Percent(total, rate))

	pref := &domain.PaymentPreference{
		PreferenceID:  "pref_" + uuid.NewString(),
		Total:         total,
		PlatformRate:  rate,
		PlatformFee:   fee,
		Distributions: []domain.ProviderDistribution{},
	}
	clinicNet := total.Sub(fee)

	for _, item := range dto.ToLineItems(req.Items) {
		if !item.IsCommissionable() {
			continue
		}
		provider, err := s.clinicRepo.FindProviderByID(ctx, item.ProviderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to find provider %s: %w", item.ProviderID, err)
		}
		if provider.ClinicID != clinicID || !provider.CanReceivePayouts() {
			continue
		}

		share, err := s.providerShare(ctx, clinicID, item, provider)
		if err != nil {
			return nil, err
		}
		if !share.IsPositive() {
			continue
		}
		pref.Distributions = append(pref.Distributions, domain.ProviderDistribution{
			ProviderID:           provider.ProviderID,
			PayableDestinationID: *provider.PayableDestinationID,
			Amount:               share,
			Reason:               "Commission: " + categoryOr(item.Name, defaultServiceName),
		})
		clinicNet = clinicNet.Sub(share)
	}

	if clinicNet.IsNegative() {
		return nil, fmt.Errorf("distributions exceed the payment total by %s: %w", clinicNet.Neg().String(), apperrors.ErrValidation)
	}
	pref.ClinicNet = clinicNet
	return pref, nil
}

// providerShare applies the provider's commission rule and, when none exists,
// the provider's generic commission rate.
func (s *transactionService) providerShare(ctx context.Context, clinicID string, item domain.LineItem, provider *domain.Provider) (decimal.Decimal, error) {
	split, err := s.commission.CalculateSplit(ctx, clinicID, item.ProviderID, item.ServiceID, item.Price)
	if err != nil {
		return decimal.Zero, err
	}
	if split.RuleApplied != domain.RuleAppliedDefault {
		return split.ProviderAmount, nil
	}
	if provider.CommissionRate == nil {
		return decimal.Zero, nil
	}
	return domain.RoundMoney(domain.Percent(item.Price, *provider.CommissionRate)), nil
}
