package services

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
)

// StockReaderSvc defines read operations on inventory.
type StockReaderSvc interface {
	ListProducts(ctx context.Context, clinicID string) ([]domain.Product, error)

	// GetMovements returns the 50 most recent movements of a product.
	GetMovements(ctx context.Context, clinicID, productID string) ([]domain.StockMovement, error)
}

// StockWriterSvc defines stock mutations. Each call is atomic.
type StockWriterSvc interface {
	// ProcessInbound receives a new batch and increases the aggregate stock.
	ProcessInbound(ctx context.Context, clinicID string, req dto.InboundRequest, userID string) (*domain.ProductBatch, error)

	// Consume deducts stock from batches nearest to expiration first.
	Consume(ctx context.Context, clinicID string, req dto.ConsumeRequest, userID string) ([]domain.StockMovement, error)

	// ConsumeKit deducts every item of a kit in a single all-or-nothing unit.
	ConsumeKit(ctx context.Context, clinicID string, req dto.KitConsumeRequest, userID string) ([]domain.StockMovement, error)
}

// LowStockChecker scans for products at or below their minimum stock.
type LowStockChecker interface {
	CheckLowStock(ctx context.Context) ([]domain.LowStockAlert, error)
}

// InventorySvcFacade combines all inventory service interfaces.
type InventorySvcFacade interface {
	StockReaderSvc
	StockWriterSvc
	LowStockChecker
}
