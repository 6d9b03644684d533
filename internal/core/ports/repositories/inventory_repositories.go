package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductReader defines read operations for products and kits.
type ProductReader interface {
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
	ListProductsByClinic(ctx context.Context, clinicID string) ([]domain.Product, error)

	// ListLowStockProducts returns products of every clinic whose current stock
	// is at or below their minimum stock.
	ListLowStockProducts(ctx context.Context) ([]domain.Product, error)

	// FindKitByID retrieves a kit with its items in their defined order.
	FindKitByID(ctx context.Context, kitID string) (*domain.ProductKit, error)

	// ListMovementsByProduct returns the latest movements of a product, newest first.
	ListMovementsByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error)
}

// StockTransactionSupport defines the stock mutations that must run inside a caller-owned transaction.
type StockTransactionSupport interface {
	// LockProductInTx selects the product row FOR UPDATE.
	LockProductInTx(ctx context.Context, tx pgx.Tx, productID string) (*domain.Product, error)

	// FindAvailableBatchesForUpdateInTx selects the product's batches with quantity > 0
	// ordered by expiration date ascending, locking them.
	FindAvailableBatchesForUpdateInTx(ctx context.Context, tx pgx.Tx, productID string) ([]domain.ProductBatch, error)

	SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.ProductBatch) error

	// DecrementBatchInTx subtracts quantity from a batch, refusing to go below zero.
	DecrementBatchInTx(ctx context.Context, tx pgx.Tx, batchID string, quantity decimal.Decimal) error

	SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error

	// AdjustProductStockInTx adds delta (possibly negative) to the aggregate stock
	// and replaces the cost price when one is given.
	AdjustProductStockInTx(ctx context.Context, tx pgx.Tx, productID string, delta decimal.Decimal, costPrice *decimal.Decimal, userID string, now time.Time) error
}

// InventoryRepositoryFacade combines all inventory repository interfaces.
type InventoryRepositoryFacade interface {
	ProductReader
	StockTransactionSupport
}

// InventoryRepositoryWithTx extends InventoryRepositoryFacade with transaction capabilities.
type InventoryRepositoryWithTx interface {
	InventoryRepositoryFacade
	TransactionManager
}
