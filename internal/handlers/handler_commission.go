package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type commissionHandler struct {
	commissionService portssvc.CommissionSvcFacade
	now               func() time.Time
}

func newCommissionHandler(cs portssvc.CommissionSvcFacade) *commissionHandler {
	return &commissionHandler{commissionService: cs, now: time.Now}
}

// RegisterCommissionRoutes registers split simulation, commission report and rule routes.
func RegisterCommissionRoutes(rg *gin.RouterGroup, commissionService portssvc.CommissionSvcFacade) {
	h := newCommissionHandler(commissionService)

	finance := rg.Group("/finance")
	{
		finance.POST("/commission/simulate", h.simulateSplit)
		finance.GET("/commission/dashboard", h.getReport)
		finance.POST("/commission/pay", h.markPaid)
		finance.POST("/rules", h.createRule)
		finance.GET("/rules", h.listRules)
		finance.DELETE("/rules/:ruleID", h.deleteRule)
	}
}

// simulateSplit godoc
// @Summary Simulate the split of a sale
// @Description Estimates provider and clinic shares per line without persisting anything
// @Tags commission
// @Accept  json
// @Produce  json
// @Param   sale body dto.SimulateSplitRequest true "Sale lines"
// @Success 200 {object} dto.SplitSimulationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to simulate split"
// @Security BearerAuth
// @Router /finance/commission/simulate [post]
func (h *commissionHandler) simulateSplit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.SimulateSplitRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	sim, err := h.commissionService.SimulateTransactionSplit(c.Request.Context(), clinicID, dto.ToLineItems(req.Items))
	if err != nil {
		respondError(c, logger, err, "Failed to simulate split")
		return
	}
	c.JSON(http.StatusOK, dto.ToSplitSimulationResponse(sim))
}

// getReport godoc
// @Summary Monthly commission dashboard
// @Description Commission logs of the month grouped by provider, with paid and pending totals
// @Tags commission
// @Produce  json
// @Param   month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {object} dto.CommissionReportResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to build commission report"
// @Security BearerAuth
// @Router /finance/commission/dashboard [get]
func (h *commissionHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var params dto.CommissionReportParams
	if !bindQuery(c, logger, &params) {
		return
	}

	month := h.now().UTC()
	if params.Month != "" {
		month, _ = time.Parse("2006-01", params.Month)
	}

	report, err := h.commissionService.GetCommissionReport(c.Request.Context(), clinicID, month)
	if err != nil {
		respondError(c, logger, err, "Failed to build commission report")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionReportResponse(report))
}

// markPaid godoc
// @Summary Mark commissions as paid
// @Description Moves the listed PENDING logs to PAID; other ids are ignored
// @Tags commission
// @Accept  json
// @Produce  json
// @Param   logs body dto.MarkCommissionsPaidRequest true "Commission log IDs"
// @Success 200 {object} dto.MarkCommissionsPaidResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to mark commissions paid"
// @Security BearerAuth
// @Router /finance/commission/pay [post]
func (h *commissionHandler) markPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.MarkCommissionsPaidRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	updated, err := h.commissionService.MarkCommissionsPaid(c.Request.Context(), clinicID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to mark commissions paid")
		return
	}

	logger.Info("Commissions marked paid", slog.Int64("updated", updated))
	c.JSON(http.StatusOK, dto.MarkCommissionsPaidResponse{Updated: updated})
}

// createRule godoc
// @Summary Create a commission rule
// @Description A rule without serviceID is the provider's default
// @Tags commission
// @Accept  json
// @Produce  json
// @Param   rule body dto.CreateCommissionRuleRequest true "Rule"
// @Success 201 {object} dto.CommissionRuleResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Provider not found"
// @Failure 409 {object} dto.ErrorResponse "A rule already exists for this provider and service"
// @Failure 500 {object} dto.ErrorResponse "Failed to create rule"
// @Security BearerAuth
// @Router /finance/rules [post]
func (h *commissionHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.CreateCommissionRuleRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	rule, err := h.commissionService.CreateRule(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger.With(slog.String("provider_id", req.ProviderID)), err, "Failed to create rule")
		return
	}

	logger.Info("Commission rule created", slog.String("rule_id", rule.RuleID))
	c.JSON(http.StatusCreated, dto.ToCommissionRuleResponse(rule))
}

// listRules godoc
// @Summary List commission rules
// @Tags commission
// @Produce  json
// @Success 200 {array} dto.CommissionRuleResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list rules"
// @Security BearerAuth
// @Router /finance/rules [get]
func (h *commissionHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	rules, err := h.commissionService.ListRules(c.Request.Context(), clinicID)
	if err != nil {
		respondError(c, logger, err, "Failed to list rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCommissionRuleResponse(rules))
}

// deleteRule godoc
// @Summary Delete a commission rule
// @Tags commission
// @Param   ruleID path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete rule"
// @Security BearerAuth
// @Router /finance/rules/{ruleID} [delete]
func (h *commissionHandler) deleteRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	ruleID := c.Param("ruleID")

	if err := h.commissionService.DeleteRule(c.Request.Context(), clinicID, ruleID); err != nil {
		respondError(c, logger.With(slog.String("rule_id", ruleID)), err, "Failed to delete rule")
		return
	}
	c.Status(http.StatusNoContent)
}
