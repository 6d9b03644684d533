package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/handlers"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testClinicID = "clinic-1"
	testUserID   = "user-1"
)

type HandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	jwtSecret      string
	inventory      *MockInventoryService
	ledger         *MockLedgerService
	transactions   *MockTransactionService
	reconciliation *MockReconciliationReader
	commission     *MockCommissionService
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router = gin.New()

	suite.inventory = new(MockInventoryService)
	suite.ledger = new(MockLedgerService)
	suite.transactions = new(MockTransactionService)
	suite.reconciliation = new(MockReconciliationReader)
	suite.commission = new(MockCommissionService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	handlers.RegisterStockRoutes(v1, suite.inventory)
	handlers.RegisterLedgerRoutes(v1, suite.ledger)
	handlers.RegisterFinanceRoutes(v1, suite.transactions, suite.reconciliation)
	handlers.RegisterCommissionRoutes(v1, suite.commission)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.inventory.AssertExpectations(suite.T())
	suite.ledger.AssertExpectations(suite.T())
	suite.transactions.AssertExpectations(suite.T())
	suite.reconciliation.AssertExpectations(suite.T())
	suite.commission.AssertExpectations(suite.T())
}

// generateTestToken creates a JWT the way the identity service issues them.
func (suite *HandlerTestSuite) generateTestToken(userID, clinicID string) string {
	claims := middleware.ClinicClaims{
		ClinicID: clinicID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vet-clinic-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID, testClinicID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *HandlerTestSuite) sampleTransaction(status domain.TransactionStatus) domain.FinancialTransaction {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return domain.FinancialTransaction{
		TransactionID: uuid.NewString(),
		ClinicID:      testClinicID,
		Type:          domain.IncomeTransaction,
		Amount:        decimal.NewFromInt(200),
		Description:   "Surgery for Rex",
		Category:      "Surgery",
		PaymentMethod: "PIX",
		Status:        status,
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: testUserID, LastUpdatedAt: now, LastUpdatedBy: testUserID},
	}
}

// --- Auth ---

func (suite *HandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stock/products", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestTokenWithoutClinic_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stock/products", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID, ""))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- Stock ---

func (suite *HandlerTestSuite) TestConsume_InsufficientStockIsBadRequest() {
	suite.inventory.On("Consume", mock.Anything, testClinicID, mock.MatchedBy(func(r dto.ConsumeRequest) bool {
		return r.ProductID == "p1" && r.Quantity.Equal(decimal.NewFromInt(30)) && r.Reason == "Surgery"
	}), testUserID).Return(nil, fmt.Errorf("product p1 short by 20: %w", apperrors.ErrInsufficientStock)).Once()

	w := suite.do(http.MethodPost, "/api/v1/stock/consume", gin.H{"productID": "p1", "quantity": "30", "reason": "Surgery"})

	suite.Equal(http.StatusBadRequest, w.Code)
	var body dto.ErrorResponse
	suite.decode(w, &body)
	suite.Contains(body.Error, "insufficient stock")
}

func (suite *HandlerTestSuite) TestConsume_ZeroQuantityRejectedByBinding() {
	w := suite.do(http.MethodPost, "/api/v1/stock/consume", gin.H{"productID": "p1", "quantity": "0", "reason": "Surgery"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.inventory.AssertNotCalled(suite.T(), "Consume")
}

func (suite *HandlerTestSuite) TestConsume_ReturnsMovements() {
	batchID := "b1"
	movements := []domain.StockMovement{{
		MovementID: "m1",
		ProductID:  "p1",
		Type:       domain.MovementOutConsume,
		Quantity:   decimal.NewFromInt(2),
		Reason:     "Surgery (Batch B1)",
		BatchID:    &batchID,
		CreatedBy:  testUserID,
	}}
	suite.inventory.On("Consume", mock.Anything, testClinicID, mock.AnythingOfType("dto.ConsumeRequest"), testUserID).Return(movements, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/stock/consume", gin.H{"productID": "p1", "quantity": "2", "reason": "Surgery"})

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.StockMovementResponse
	suite.decode(w, &body)
	suite.Require().Len(body, 1)
	suite.Equal("Surgery (Batch B1)", body[0].Reason)
	suite.Equal("2", body[0].Quantity)
}

func (suite *HandlerTestSuite) TestProcessInbound_Created() {
	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.inventory.On("ProcessInbound", mock.Anything, testClinicID, mock.MatchedBy(func(r dto.InboundRequest) bool {
		return r.BatchNumber == "B1" && r.ExpirationDate.Equal(exp)
	}), testUserID).Return(&domain.ProductBatch{BatchID: "b1", ProductID: "p1", BatchNumber: "B1", Quantity: decimal.NewFromInt(10), ExpirationDate: exp}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/stock/inbound", gin.H{
		"productID":      "p1",
		"quantity":       "10",
		"batchNumber":    "B1",
		"expirationDate": exp.Format(time.RFC3339),
		"costPrice":      "12.50",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.BatchResponse
	suite.decode(w, &body)
	suite.Equal("b1", body.BatchID)
}

func (suite *HandlerTestSuite) TestGetMovements_ProductOfOtherClinicIsNotFound() {
	suite.inventory.On("GetMovements", mock.Anything, testClinicID, "p9").Return(nil, fmt.Errorf("product p9: %w", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/stock/products/p9/movements", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// --- Ledger ---

func (suite *HandlerTestSuite) TestTrialBalance_SumsBothSides() {
	suite.ledger.On("GetTrialBalance", mock.Anything, testClinicID).Return([]domain.Account{
		{AccountID: "a1", Name: "Cash/Bank", AccountType: domain.Asset, Balance: decimal.RequireFromString("150.01")},
		{AccountID: "a2", Name: "Surgery", AccountType: domain.Revenue, Balance: decimal.RequireFromString("-150.01")},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/trial-balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.TrialBalanceResponse
	suite.decode(w, &body)
	suite.Equal("150.01", body.TotalDebit)
	suite.Equal("150.01", body.TotalCredit)
	suite.Equal("0.00", body.Net)
	suite.Len(body.Accounts, 2)
}

func (suite *HandlerTestSuite) TestGetBalance_Internal() {
	suite.ledger.On("GetBalance", mock.Anything, testClinicID, "a1").Return(decimal.Zero, fmt.Errorf("connection reset")).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/accounts/a1/balance", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var body dto.ErrorResponse
	suite.decode(w, &body)
	suite.Equal("Failed to get balance", body.Error)
}

func (suite *HandlerTestSuite) TestRecordEntry_ValidationError() {
	suite.ledger.On("RecordEntry", mock.Anything, testClinicID, mock.AnythingOfType("dto.RecordEntryRequest"), testUserID).
		Return(nil, fmt.Errorf("debit and credit accounts must differ: %w", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/ledger/entries", gin.H{
		"description":     "Same account",
		"amount":          "10",
		"debitAccountID":  "a1",
		"creditAccountID": "a1",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- Finance ---

func (suite *HandlerTestSuite) TestCreateTransaction_Created() {
	txn := suite.sampleTransaction(domain.StatusCompleted)
	suite.transactions.On("Create", mock.Anything, testClinicID, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool {
		return r.Type == domain.IncomeTransaction && r.Amount.Equal(decimal.NewFromInt(200)) && len(r.Items) == 1
	}), testUserID).Return(&portssvc.CreateTransactionResult{
		Transaction:           txn,
		PendingReconciliation: []domain.ReconciliationKind{domain.ReconcileStockConsumption},
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance", gin.H{
		"type":          "INCOME",
		"amount":        "200.00",
		"description":   "Surgery for Rex",
		"category":      "Surgery",
		"paymentMethod": "PIX",
		"items":         []gin.H{{"productID": "p1", "quantity": "2", "price": "0"}},
	})

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.CreateTransactionResponse
	suite.decode(w, &body)
	suite.Equal(txn.TransactionID, body.Transaction.TransactionID)
	suite.Equal("200.00", body.Transaction.Amount)
	suite.Equal([]domain.ReconciliationKind{domain.ReconcileStockConsumption}, body.PendingReconciliation)
}

func (suite *HandlerTestSuite) TestCreateTransaction_BindingErrors() {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing type", gin.H{"amount": "10", "description": "x", "paymentMethod": "PIX"}},
		{"unknown type", gin.H{"type": "REFUND", "amount": "10", "description": "x", "paymentMethod": "PIX"}},
		{"zero amount", gin.H{"type": "INCOME", "amount": "0", "description": "x", "paymentMethod": "PIX"}},
		{"canceled at creation", gin.H{"type": "INCOME", "amount": "10", "description": "x", "paymentMethod": "PIX", "status": "CANCELED"}},
		{"split without provider", gin.H{"type": "INCOME", "amount": "10", "description": "x", "paymentMethod": "PIX", "splitRules": []gin.H{{"amount": "5"}}}},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/finance", tc.body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.transactions.AssertNotCalled(suite.T(), "Create")
}

func (suite *HandlerTestSuite) TestCancelTransaction_AlreadyCanceledIsConflict() {
	suite.transactions.On("CancelTransaction", mock.Anything, testClinicID, "t1", testUserID).
		Return(nil, fmt.Errorf("transaction t1 is already canceled: %w", apperrors.ErrConflict)).Once()

	w := suite.do(http.MethodDelete, "/api/v1/finance/t1", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCompleteTransaction_OK() {
	txn := suite.sampleTransaction(domain.StatusCompleted)
	suite.transactions.On("CompleteTransaction", mock.Anything, testClinicID, txn.TransactionID, testUserID).Return(&txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance/"+txn.TransactionID+"/complete", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.TransactionResponse
	suite.decode(w, &body)
	suite.Equal(domain.StatusCompleted, body.Status)
}

func (suite *HandlerTestSuite) TestListTransactions_PassesFilters() {
	txn := suite.sampleTransaction(domain.StatusPending)
	suite.transactions.On("ListTransactions", mock.Anything, testClinicID, dto.ListTransactionsParams{Status: "PENDING", TutorID: "tutor-1"}).
		Return([]domain.FinancialTransaction{txn}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/finance?status=PENDING&tutorID=tutor-1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.TransactionResponse
	suite.decode(w, &body)
	suite.Len(body, 1)
}

func (suite *HandlerTestSuite) TestListTransactions_InvalidStatus() {
	w := suite.do(http.MethodGet, "/api/v1/finance?status=LOST", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDashboard_ParsesDates() {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.transactions.On("GetFinancialDashboard", mock.Anything, testClinicID,
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(start) }),
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(end) }),
	).Return(&domain.FinancialDashboard{
		TotalRevenue:     decimal.NewFromInt(1000),
		TotalExpenses:    decimal.NewFromInt(200),
		NetProfit:        decimal.NewFromInt(800),
		PlatformFeesPaid: decimal.Zero,
		MarginPercent:    decimal.NewFromInt(80),
		ChartData:        []domain.DailyTotals{},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/finance/dashboard?startDate=2025-03-01&endDate=2025-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.FinancialDashboardResponse
	suite.decode(w, &body)
	suite.Equal("800.00", body.NetProfit)
	suite.Equal("80.0", body.MarginPercent)
}

func (suite *HandlerTestSuite) TestDashboard_BadDate() {
	w := suite.do(http.MethodGet, "/api/v1/finance/dashboard?startDate=03/01/2025", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestPaymentPreference_OverDistributionIsBadRequest() {
	suite.transactions.On("CreatePaymentPreference", mock.Anything, testClinicID, mock.AnythingOfType("dto.PaymentPreferenceRequest")).
		Return(nil, fmt.Errorf("provider shares exceed the total: %w", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance/pos/preference", gin.H{"total": "100"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestReconciliation_FilterByStatus() {
	suite.reconciliation.On("ListReconciliationTasks", mock.Anything, testClinicID, domain.ReconciliationFailed).
		Return([]domain.ReconciliationTask{{
			TaskID:  "t1",
			Kind:    domain.ReconcileLedgerPosting,
			Payload: json.RawMessage(`{}`),
			Status:  domain.ReconciliationFailed,
		}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/finance/reconciliation?status=FAILED", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.ReconciliationTaskResponse
	suite.decode(w, &body)
	suite.Require().Len(body, 1)
	suite.Equal(domain.ReconcileLedgerPosting, body[0].Kind)
}

// --- Commission ---

func (suite *HandlerTestSuite) TestCommissionReport_ParsesMonth() {
	month := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := month.AddDate(0, 1, 0)
	suite.commission.On("GetCommissionReport", mock.Anything, testClinicID, month).Return(&domain.CommissionReport{
		PeriodStart: month,
		PeriodEnd:   end,
		Summary:     domain.CommissionSummary{TotalGenerated: decimal.NewFromInt(60), TotalPending: decimal.NewFromInt(60), TotalPaid: decimal.Zero},
		ByProvider:  []domain.ProviderCommissions{},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/finance/commission/dashboard?month=2025-02", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.CommissionReportResponse
	suite.decode(w, &body)
	suite.Equal("60.00", body.Summary.TotalPending)
	suite.Equal("0.00", body.Summary.TotalPaid)
}

func (suite *HandlerTestSuite) TestCommissionReport_BadMonth() {
	w := suite.do(http.MethodGet, "/api/v1/finance/commission/dashboard?month=2025-13", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestSimulateSplit() {
	suite.commission.On("SimulateTransactionSplit", mock.Anything, testClinicID, mock.MatchedBy(func(items []domain.LineItem) bool {
		return len(items) == 1 && items[0].ProviderID == "prov-1" && items[0].Price.Equal(decimal.NewFromInt(100))
	})).Return(&domain.SplitSimulation{
		TotalProvider: decimal.NewFromInt(60),
		TotalClinic:   decimal.NewFromInt(40),
		Details: []domain.SplitResult{{
			ProviderAmount: decimal.NewFromInt(60),
			ClinicAmount:   decimal.NewFromInt(40),
			RuleApplied:    "PERCENTAGE_CLINIC_MARGIN",
			RuleID:         "r1",
		}},
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance/commission/simulate", gin.H{
		"items": []gin.H{{"type": "SERVICE", "providerID": "prov-1", "serviceID": "svc-1", "price": "100"}},
	})

	suite.Equal(http.StatusOK, w.Code)
	var body dto.SplitSimulationResponse
	suite.decode(w, &body)
	suite.Equal("60.00", body.TotalProvider)
	suite.Equal("40.00", body.TotalClinic)
}

func (suite *HandlerTestSuite) TestMarkPaid() {
	suite.commission.On("MarkCommissionsPaid", mock.Anything, testClinicID, dto.MarkCommissionsPaidRequest{LogIDs: []string{"l1", "l2"}}).
		Return(int64(1), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance/commission/pay", gin.H{"logIDs": []string{"l1", "l2"}})

	suite.Equal(http.StatusOK, w.Code)
	var body dto.MarkCommissionsPaidResponse
	suite.decode(w, &body)
	suite.EqualValues(1, body.Updated)
}

func (suite *HandlerTestSuite) TestCreateRule_DuplicateIsConflict() {
	suite.commission.On("CreateRule", mock.Anything, testClinicID, mock.AnythingOfType("dto.CreateCommissionRuleRequest"), testUserID).
		Return(nil, fmt.Errorf("rule for provider prov-1: %w", apperrors.ErrDuplicate)).Once()

	w := suite.do(http.MethodPost, "/api/v1/finance/rules", gin.H{
		"providerID":         "prov-1",
		"ruleType":           "FIXED_PROVIDER_VALUE",
		"providerFixedValue": "50",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteRule() {
	suite.commission.On("DeleteRule", mock.Anything, testClinicID, "r1").Return(nil).Once()
	suite.commission.On("DeleteRule", mock.Anything, testClinicID, "r2").Return(fmt.Errorf("rule r2: %w", apperrors.ErrNotFound)).Once()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/v1/finance/rules/r1", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/v1/finance/rules/r2", nil).Code)
}
