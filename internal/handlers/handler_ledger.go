package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// RegisterLedgerRoutes registers routes related to accounts and entries.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/accounts", h.createAccount)
		ledger.GET("/accounts/:accountID/balance", h.getBalance)
		ledger.GET("/trial-balance", h.getTrialBalance)
		ledger.POST("/entries", h.recordEntry)
	}
}

// createAccount godoc
// @Summary Find or create a ledger account
// @Description Returns the clinic's account with the given name, creating it when missing
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /ledger/accounts [post]
func (h *ledgerHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_name", req.Name)), err, "Failed to create account")
		return
	}

	logger.Info("Account ready", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getBalance godoc
// @Summary Get an account balance
// @Description Debit-positive balance: debits minus credits
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to get balance"
// @Security BearerAuth
// @Router /ledger/accounts/{accountID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("accountID")

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), clinicID, accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, Balance: dto.Money(balance)})
}

// getTrialBalance godoc
// @Summary Get the trial balance
// @Description Lists every account of the clinic ordered by code, then name
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to get trial balance"
// @Security BearerAuth
// @Router /ledger/trial-balance [get]
func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	accounts, err := h.ledgerService.GetTrialBalance(c.Request.Context(), clinicID)
	if err != nil {
		respondError(c, logger, err, "Failed to get trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(accounts))
}

// recordEntry godoc
// @Summary Record a double entry
// @Description Posts amount from the credit account to the debit account
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.RecordEntryRequest true "Entry"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to record entry"
// @Security BearerAuth
// @Router /ledger/entries [post]
func (h *ledgerHandler) recordEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.RecordEntryRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	entry, err := h.ledgerService.RecordEntry(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record entry")
		return
	}

	logger.Info("Ledger entry recorded", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}
