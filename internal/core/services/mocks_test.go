package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CommissionRepository ---
type MockCommissionRepository struct {
	mock.Mock
}

var _ portsrepo.CommissionRepositoryFacade = (*MockCommissionRepository)(nil)

func (m *MockCommissionRepository) SaveRule(ctx context.Context, rule domain.CommissionRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockCommissionRepository) DeleteRule(ctx context.Context, clinicID, ruleID string) error {
	return m.Called(ctx, clinicID, ruleID).Error(0)
}

func (m *MockCommissionRepository) ListRulesByClinic(ctx context.Context, clinicID string) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRule), args.Error(1)
}

func (m *MockCommissionRepository) FindRulesForProvider(ctx context.Context, clinicID, providerID string) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, clinicID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRule), args.Error(1)
}

func (m *MockCommissionRepository) SaveLog(ctx context.Context, log domain.CommissionLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockCommissionRepository) ListLogsByClinicBetween(ctx context.Context, clinicID string, start, end time.Time) ([]domain.CommissionLog, error) {
	args := m.Called(ctx, clinicID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionLog), args.Error(1)
}

func (m *MockCommissionRepository) MarkLogsPaid(ctx context.Context, clinicID string, logIDs []string, paidAt time.Time) (int64, error) {
	args := m.Called(ctx, clinicID, logIDs, paidAt)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ClinicReader ---
type MockClinicReader struct {
	mock.Mock
}

var _ portsrepo.ClinicReader = (*MockClinicReader)(nil)

func (m *MockClinicReader) FindClinicByID(ctx context.Context, clinicID string) (*domain.Clinic, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Clinic), args.Error(1)
}

func (m *MockClinicReader) FindProviderByID(ctx context.Context, providerID string) (*domain.Provider, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Provider), args.Error(1)
}

func (m *MockClinicReader) FindProvidersByIDs(ctx context.Context, providerIDs []string) (map[string]domain.Provider, error) {
	args := m.Called(ctx, providerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Provider), args.Error(1)
}

// --- Mock FinancialTransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.FinancialTransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, clinicID string, filter domain.TransactionFilter) ([]domain.FinancialTransaction, error) {
	args := m.Called(ctx, clinicID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionWithCommissions(ctx context.Context, txn domain.FinancialTransaction, logs []domain.CommissionLog) error {
	return m.Called(ctx, txn, logs).Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, expected, next domain.TransactionStatus, description string, userID string, now time.Time) error {
	return m.Called(ctx, transactionID, expected, next, description, userID, now).Error(0)
}

// --- Mock ReconciliationRepository ---
type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepository = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) SaveTask(ctx context.Context, task domain.ReconciliationTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockReconciliationRepository) ClaimDueTasks(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.ReconciliationTask, error) {
	args := m.Called(ctx, now, lease, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationTask), args.Error(1)
}

func (m *MockReconciliationRepository) UpdateTask(ctx context.Context, task domain.ReconciliationTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockReconciliationRepository) ListTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error) {
	args := m.Called(ctx, clinicID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationTask), args.Error(1)
}

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) GetBalance(ctx context.Context, clinicID, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, clinicID, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) GetTrialBalance(ctx context.Context, clinicID string) ([]domain.Account, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerService) ListEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ListUnreversedEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) CreateAccount(ctx context.Context, clinicID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) RecordEntry(ctx context.Context, clinicID string, req dto.RecordEntryRequest, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntries(ctx context.Context, entries []domain.LedgerEntry, description string, userID string) ([]string, error) {
	args := m.Called(ctx, entries, description, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock StockWriter ---
type MockStockWriter struct {
	mock.Mock
}

var _ portssvc.StockWriterSvc = (*MockStockWriter)(nil)

func (m *MockStockWriter) ProcessInbound(ctx context.Context, clinicID string, req dto.InboundRequest, userID string) (*domain.ProductBatch, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductBatch), args.Error(1)
}

func (m *MockStockWriter) Consume(ctx context.Context, clinicID string, req dto.ConsumeRequest, userID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockStockWriter) ConsumeKit(ctx context.Context, clinicID string, req dto.KitConsumeRequest, userID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// --- Mock ReconciliationRecorder ---
type MockReconciliationRecorder struct {
	mock.Mock
}

var _ portssvc.ReconciliationRecorderSvc = (*MockReconciliationRecorder)(nil)

func (m *MockReconciliationRecorder) Enqueue(ctx context.Context, clinicID, transactionID string, kind domain.ReconciliationKind, payload any, cause error) error {
	return m.Called(ctx, clinicID, transactionID, kind, payload, cause).Error(0)
}

// --- Mock AuditRecorder ---
type MockAuditRecorder struct {
	mock.Mock
}

var _ portssvc.AuditRecorder = (*MockAuditRecorder)(nil)

func (m *MockAuditRecorder) Record(ctx context.Context, event domain.AuditEvent) error {
	return m.Called(ctx, event).Error(0)
}
