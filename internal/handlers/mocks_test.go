package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock InventoryService ---
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) ListProducts(ctx context.Context, clinicID string) ([]domain.Product, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockInventoryService) GetMovements(ctx context.Context, clinicID, productID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, clinicID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryService) ProcessInbound(ctx context.Context, clinicID string, req dto.InboundRequest, userID string) (*domain.ProductBatch, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductBatch), args.Error(1)
}

func (m *MockInventoryService) Consume(ctx context.Context, clinicID string, req dto.ConsumeRequest, userID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryService) ConsumeKit(ctx context.Context, clinicID string, req dto.KitConsumeRequest, userID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryService) CheckLowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LowStockAlert), args.Error(1)
}

var _ portssvc.InventorySvcFacade = (*MockInventoryService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

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

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, clinicID, transactionID string) (*domain.FinancialTransaction, error) {
	args := m.Called(ctx, clinicID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, clinicID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	args := m.Called(ctx, clinicID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionService) GetFinancialDashboard(ctx context.Context, clinicID string, start, end *time.Time) (*domain.FinancialDashboard, error) {
	args := m.Called(ctx, clinicID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDashboard), args.Error(1)
}

func (m *MockTransactionService) Create(ctx context.Context, clinicID string, req dto.CreateTransactionRequest, userID string) (*portssvc.CreateTransactionResult, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.CreateTransactionResult), args.Error(1)
}

func (m *MockTransactionService) CompleteTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error) {
	args := m.Called(ctx, clinicID, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionService) CancelTransaction(ctx context.Context, clinicID, transactionID, userID string) (*domain.FinancialTransaction, error) {
	args := m.Called(ctx, clinicID, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionService) CreatePaymentPreference(ctx context.Context, clinicID string, req dto.PaymentPreferenceRequest) (*domain.PaymentPreference, error) {
	args := m.Called(ctx, clinicID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPreference), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock ReconciliationReader ---
type MockReconciliationReader struct {
	mock.Mock
}

func (m *MockReconciliationReader) ListReconciliationTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error) {
	args := m.Called(ctx, clinicID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationTask), args.Error(1)
}

var _ portssvc.ReconciliationReaderSvc = (*MockReconciliationReader)(nil)

// --- Mock CommissionService ---
type MockCommissionService struct {
	mock.Mock
}

func (m *MockCommissionService) CalculateSplit(ctx context.Context, clinicID, providerID, serviceID string, salePrice decimal.Decimal) (*domain.SplitResult, error) {
	args := m.Called(ctx, clinicID, providerID, serviceID, salePrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SplitResult), args.Error(1)
}

func (m *MockCommissionService) SimulateTransactionSplit(ctx context.Context, clinicID string, items []domain.LineItem) (*domain.SplitSimulation, error) {
	args := m.Called(ctx, clinicID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SplitSimulation), args.Error(1)
}

func (m *MockCommissionService) BuildCommissionLog(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error) {
	args := m.Called(ctx, clinicID, item, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionLog), args.Error(1)
}

func (m *MockCommissionService) LogCommission(ctx context.Context, clinicID string, item domain.LineItem, transactionID *string) (*domain.CommissionLog, error) {
	args := m.Called(ctx, clinicID, item, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionLog), args.Error(1)
}

func (m *MockCommissionService) GetCommissionReport(ctx context.Context, clinicID string, month time.Time) (*domain.CommissionReport, error) {
	args := m.Called(ctx, clinicID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionReport), args.Error(1)
}

func (m *MockCommissionService) MarkCommissionsPaid(ctx context.Context, clinicID string, req dto.MarkCommissionsPaidRequest) (int64, error) {
	args := m.Called(ctx, clinicID, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommissionService) CreateRule(ctx context.Context, clinicID string, req dto.CreateCommissionRuleRequest, userID string) (*domain.CommissionRule, error) {
	args := m.Called(ctx, clinicID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}

func (m *MockCommissionService) ListRules(ctx context.Context, clinicID string) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRule), args.Error(1)
}

func (m *MockCommissionService) DeleteRule(ctx context.Context, clinicID, ruleID string) error {
	args := m.Called(ctx, clinicID, ruleID)
	return args.Error(0)
}

var _ portssvc.CommissionSvcFacade = (*MockCommissionService)(nil)
