package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// financeHandler handles HTTP requests related to financial transactions.
type financeHandler struct {
	transactionService    portssvc.TransactionSvcFacade
	reconciliationService portssvc.ReconciliationReaderSvc
}

func newFinanceHandler(ts portssvc.TransactionSvcFacade, rs portssvc.ReconciliationReaderSvc) *financeHandler {
	return &financeHandler{transactionService: ts, reconciliationService: rs}
}

// RegisterFinanceRoutes registers transaction, dashboard, checkout and reconciliation routes.
// Commission routes live under the same group, see RegisterCommissionRoutes.
func RegisterFinanceRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade, reconciliationService portssvc.ReconciliationReaderSvc) {
	h := newFinanceHandler(transactionService, reconciliationService)

	finance := rg.Group("/finance")
	{
		finance.POST("", h.createTransaction)
		finance.GET("", h.listTransactions)
		finance.GET("/dashboard", h.getDashboard)
		finance.POST("/pos/preference", h.createPaymentPreference)
		finance.GET("/reconciliation", h.listReconciliationTasks)
		finance.GET("/:transactionID", h.getTransaction)
		finance.DELETE("/:transactionID", h.cancelTransaction)
		finance.POST("/:transactionID/complete", h.completeTransaction)
	}
}

// createTransaction godoc
// @Summary Create a financial transaction
// @Description Persists the transaction with its commission logs, then consumes stock and posts to the ledger when COMPLETED. Side effects that fail are queued for reconciliation.
// @Tags finance
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.CreateTransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create transaction"
// @Security BearerAuth
// @Router /finance [post]
func (h *financeHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	result, err := h.transactionService.Create(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	pending := result.PendingReconciliation
	if pending == nil {
		pending = []domain.ReconciliationKind{}
	}
	logger.Info("Financial transaction created",
		slog.String("transaction_id", result.Transaction.TransactionID),
		slog.Int("pending_reconciliation", len(pending)))
	c.JSON(http.StatusCreated, dto.CreateTransactionResponse{
		Transaction:           dto.ToTransactionResponse(&result.Transaction),
		PendingReconciliation: pending,
	})
}

// listTransactions godoc
// @Summary List financial transactions
// @Description Newest first
// @Tags finance
// @Produce  json
// @Param   status query string false "PENDING, COMPLETED or CANCELED"
// @Param   type query string false "INCOME or EXPENSE"
// @Param   tutorID query string false "Tutor ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list transactions"
// @Security BearerAuth
// @Router /finance [get]
func (h *financeHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if !bindQuery(c, logger, &params) {
		return
	}

	txns, err := h.transactionService.ListTransactions(c.Request.Context(), clinicID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

// getTransaction godoc
// @Summary Get a financial transaction
// @Tags finance
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to get transaction"
// @Security BearerAuth
// @Router /finance/{transactionID} [get]
func (h *financeHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), clinicID, transactionID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// cancelTransaction godoc
// @Summary Cancel a financial transaction
// @Description Marks the transaction CANCELED and reverses its ledger entries. Stock is not restored.
// @Tags finance
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction already canceled"
// @Failure 500 {object} dto.ErrorResponse "Failed to cancel transaction"
// @Security BearerAuth
// @Router /finance/{transactionID} [delete]
func (h *financeHandler) cancelTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.CancelTransaction(c.Request.Context(), clinicID, transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel transaction")
		return
	}

	logger.Info("Financial transaction canceled")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// completeTransaction godoc
// @Summary Complete a pending financial transaction
// @Description Moves PENDING to COMPLETED and posts it to the ledger
// @Tags finance
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction is not pending"
// @Failure 500 {object} dto.ErrorResponse "Failed to complete transaction"
// @Security BearerAuth
// @Router /finance/{transactionID}/complete [post]
func (h *financeHandler) completeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.CompleteTransaction(c.Request.Context(), clinicID, transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to complete transaction")
		return
	}

	logger.Info("Financial transaction completed")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getDashboard godoc
// @Summary Financial dashboard
// @Description Totals of COMPLETED transactions between startDate and endDate, both inclusive
// @Tags finance
// @Produce  json
// @Param   startDate query string false "YYYY-MM-DD"
// @Param   endDate query string false "YYYY-MM-DD"
// @Success 200 {object} dto.FinancialDashboardResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to build dashboard"
// @Security BearerAuth
// @Router /finance/dashboard [get]
func (h *financeHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var params dto.DashboardParams
	if !bindQuery(c, logger, &params) {
		return
	}

	// The binding already validated the layout.
	var start, end *time.Time
	if params.StartDate != "" {
		t, _ := time.Parse(time.DateOnly, params.StartDate)
		start = &t
	}
	if params.EndDate != "" {
		t, _ := time.Parse(time.DateOnly, params.EndDate)
		end = &t
	}

	dash, err := h.transactionService.GetFinancialDashboard(c.Request.Context(), clinicID, start, end)
	if err != nil {
		respondError(c, logger, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialDashboardResponse(dash))
}

// createPaymentPreference godoc
// @Summary Prepare a split checkout
// @Description Computes the platform fee and the provider shares of a sale
// @Tags finance
// @Accept  json
// @Produce  json
// @Param   preference body dto.PaymentPreferenceRequest true "Checkout"
// @Success 201 {object} dto.PaymentPreferenceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or distributions exceed the total"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Clinic not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to create payment preference"
// @Security BearerAuth
// @Router /finance/pos/preference [post]
func (h *financeHandler) createPaymentPreference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.PaymentPreferenceRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	pref, err := h.transactionService.CreatePaymentPreference(c.Request.Context(), clinicID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create payment preference")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPaymentPreferenceResponse(pref))
}

// listReconciliationTasks godoc
// @Summary List reconciliation tasks
// @Description Side effects that failed during transaction processing, with their retry state
// @Tags finance
// @Produce  json
// @Param   status query string false "PENDING, DONE or FAILED"
// @Success 200 {array} dto.ReconciliationTaskResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list reconciliation tasks"
// @Security BearerAuth
// @Router /finance/reconciliation [get]
func (h *financeHandler) listReconciliationTasks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var params dto.ListReconciliationParams
	if !bindQuery(c, logger, &params) {
		return
	}

	tasks, err := h.reconciliationService.ListReconciliationTasks(c.Request.Context(), clinicID, domain.ReconciliationStatus(params.Status))
	if err != nil {
		respondError(c, logger, err, "Failed to list reconciliation tasks")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationTaskResponses(tasks))
}
