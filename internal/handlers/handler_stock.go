package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// stockHandler handles HTTP requests related to inventory.
type stockHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

func newStockHandler(is portssvc.InventorySvcFacade) *stockHandler {
	return &stockHandler{inventoryService: is}
}

// RegisterStockRoutes registers routes related to products, batches and consumption.
func RegisterStockRoutes(rg *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := newStockHandler(inventoryService)

	stock := rg.Group("/stock")
	{
		stock.POST("/inbound", h.processInbound)
		stock.POST("/consume", h.consume)
		stock.POST("/kits/consume", h.consumeKit)
		stock.GET("/products", h.listProducts)
		stock.GET("/products/:productID/movements", h.getMovements)
	}
}

// processInbound godoc
// @Summary Receive a new batch
// @Description Creates a batch, logs an IN_PURCHASE movement and raises the product stock
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   inbound body dto.InboundRequest true "Batch details"
// @Success 201 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to receive stock"
// @Security BearerAuth
// @Router /stock/inbound [post]
func (h *stockHandler) processInbound(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.InboundRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger = logger.With(slog.String("product_id", req.ProductID))
	batch, err := h.inventoryService.ProcessInbound(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to receive stock")
		return
	}

	logger.Info("Stock received", slog.String("batch_id", batch.BatchID))
	c.JSON(http.StatusCreated, dto.ToBatchResponse(batch))
}

// consume godoc
// @Summary Consume stock of a product
// @Description Deducts stock from the batches nearest to expiration first
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   consumption body dto.ConsumeRequest true "Consumption"
// @Success 200 {array} dto.StockMovementResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or insufficient stock"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to consume stock"
// @Security BearerAuth
// @Router /stock/consume [post]
func (h *stockHandler) consume(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.ConsumeRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	movements, err := h.inventoryService.Consume(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger.With(slog.String("product_id", req.ProductID)), err, "Failed to consume stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockMovementResponses(movements))
}

// consumeKit godoc
// @Summary Consume a kit
// @Description Deducts every item of a kit; either all items are deducted or none
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   consumption body dto.KitConsumeRequest true "Kit consumption"
// @Success 200 {array} dto.StockMovementResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or insufficient stock"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Kit not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to consume kit"
// @Security BearerAuth
// @Router /stock/kits/consume [post]
func (h *stockHandler) consumeKit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	var req dto.KitConsumeRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	movements, err := h.inventoryService.ConsumeKit(c.Request.Context(), clinicID, req, userID)
	if err != nil {
		respondError(c, logger.With(slog.String("kit_id", req.KitID)), err, "Failed to consume kit")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockMovementResponses(movements))
}

// listProducts godoc
// @Summary List products
// @Tags stock
// @Produce  json
// @Success 200 {array} dto.ProductResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list products"
// @Security BearerAuth
// @Router /stock/products [get]
func (h *stockHandler) listProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	products, err := h.inventoryService.ListProducts(c.Request.Context(), clinicID)
	if err != nil {
		respondError(c, logger, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProductResponse(products))
}

// getMovements godoc
// @Summary List the latest movements of a product
// @Tags stock
// @Produce  json
// @Param   productID path string true "Product ID"
// @Success 200 {array} dto.StockMovementResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list movements"
// @Security BearerAuth
// @Router /stock/products/{productID}/movements [get]
func (h *stockHandler) getMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, clinicID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	productID := c.Param("productID")

	movements, err := h.inventoryService.GetMovements(c.Request.Context(), clinicID, productID)
	if err != nil {
		respondError(c, logger.With(slog.String("product_id", productID)), err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockMovementResponses(movements))
}
