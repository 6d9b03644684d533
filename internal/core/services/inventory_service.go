package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MovementHistoryLimit caps the movements returned for a product.
const MovementHistoryLimit = 50

// inventoryService implements the InventorySvcFacade interface
type inventoryService struct {
	BaseService
	inventoryRepo portsrepo.InventoryRepositoryWithTx
	shortfall     domain.ShortfallPolicy
}

// InventoryOption is a functional option for configuring the inventory service
type InventoryOption func(*inventoryService)

// WithShortfallPolicy sets how consumptions beyond batch stock are handled.
func WithShortfallPolicy(policy domain.ShortfallPolicy) InventoryOption {
	return func(s *inventoryService) {
		s.shortfall = policy
	}
}

// NewInventoryService creates a new inventory service with the provided options
func NewInventoryService(repo portsrepo.InventoryRepositoryWithTx, options ...InventoryOption) portssvc.InventorySvcFacade {
	svc := &inventoryService{
		inventoryRepo: repo,
		shortfall:     domain.ShortfallPermissive,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

// withTx runs fn in a database transaction, committing only when fn succeeds.
func (s *inventoryService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := s.inventoryRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to rollback stock transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *inventoryService) ProcessInbound(ctx context.Context, clinicID string, req dto.InboundRequest, userID string) (*domain.ProductBatch, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("inbound quantity must be positive: %w", apperrors.ErrValidation)
	}
	if req.CostPrice.IsNegative() {
		return nil, fmt.Errorf("cost price cannot be negative: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.BatchNumber) == "" || req.ExpirationDate.IsZero() {
		return nil, fmt.Errorf("batch number and expiration date are required: %w", apperrors.ErrValidation)
	}

	now := s.now()
	batch := domain.ProductBatch{
		BatchID:        uuid.NewString(),
		ProductID:      req.ProductID,
		BatchNumber:    req.BatchNumber,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
		CreatedAt:      now,
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		product, err := s.inventoryRepo.LockProductInTx(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product.ClinicID != clinicID {
			return fmt.Errorf("product %s not found in clinic: %w", req.ProductID, apperrors.ErrNotFound)
		}

		if err := s.inventoryRepo.SaveBatchInTx(ctx, tx, batch); err != nil {
			return err
		}
		movement := domain.StockMovement{
			MovementID: uuid.NewString(),
			ClinicID:   clinicID,
			ProductID:  req.ProductID,
			Type:       domain.MovementInPurchase,
			Quantity:   req.Quantity,
			Reason:     inboundReason(req.InvoiceNumber, req.Provider),
			BatchID:    &batch.BatchID,
			CreatedBy:  userID,
			CreatedAt:  now,
		}
		if err := s.inventoryRepo.SaveMovementInTx(ctx, tx, movement); err != nil {
			return err
		}
		costPrice := req.CostPrice
		return s.inventoryRepo.AdjustProductStockInTx(ctx, tx, req.ProductID, req.Quantity, &costPrice, userID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to process inbound stock",
			slog.String("product_id", req.ProductID),
			slog.String("batch_number", req.BatchNumber))
		return nil, fmt.Errorf("failed to process inbound stock: %w", err)
	}

	s.LogInfo(ctx, "Inbound stock processed",
		slog.String("product_id", req.ProductID),
		slog.String("batch_id", batch.BatchID),
		slog.String("quantity", req.Quantity.String()))
	return &batch, nil
}

func inboundReason(invoiceNumber, provider string) string {
	if invoiceNumber == "" {
		invoiceNumber = "N/A"
	}
	if provider == "" {
		provider = "Unspecified supplier"
	}
	return fmt.Sprintf("Invoice %s - %s", invoiceNumber, provider)
}

func (s *inventoryService) Consume(ctx context.Context, clinicID string, req dto.ConsumeRequest, userID string) ([]domain.StockMovement, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("consumed quantity must be positive: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("consumption reason is required: %w", apperrors.ErrValidation)
	}

	var movements []domain.StockMovement
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		movements, err = s.consumeInTx(ctx, tx, clinicID, req.ProductID, req.Quantity, req.Reason, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to consume stock", slog.String("product_id", req.ProductID))
		return nil, fmt.Errorf("failed to consume stock: %w", err)
	}
	return movements, nil
}

func (s *inventoryService) ConsumeKit(ctx context.Context, clinicID string, req dto.KitConsumeRequest, userID string) ([]domain.StockMovement, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("kit quantity must be positive: %w", apperrors.ErrValidation)
	}

	kit, err := s.inventoryRepo.FindKitByID(ctx, req.KitID)
	if err != nil {
		return nil, fmt.Errorf("failed to find kit %s: %w", req.KitID, err)
	}
	if kit.ClinicID != clinicID {
		return nil, fmt.Errorf("kit %s not found in clinic: %w", req.KitID, apperrors.ErrNotFound)
	}

	reason := "Kit: " + kit.Name
	if req.MedicalRecordID != "" {
		reason += " - Medical record " + req.MedicalRecordID
	}

	var movements []domain.StockMovement
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		for _, item := range kit.Items {
			qty := item.Quantity.Mul(req.Quantity)
			if !qty.IsPositive() {
				continue
			}
			itemMovements, err := s.consumeInTx(ctx, tx, clinicID, item.ProductID, qty, reason, userID)
			if err != nil {
				return fmt.Errorf("kit item %s: %w", item.ProductID, err)
			}
			movements = append(movements, itemMovements...)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to consume kit, all items rolled back",
			slog.String("kit_id", req.KitID))
		return nil, fmt.Errorf("failed to consume kit: %w", err)
	}

	s.LogInfo(ctx, "Kit consumed",
		slog.String("kit_id", req.KitID),
		slog.Int("movements", len(movements)))
	return movements, nil
}

// consumeInTx drains the product's batches nearest to expiration first and
// decrements the aggregate stock, all within tx.
func (s *inventoryService) consumeInTx(ctx context.Context, tx pgx.Tx, clinicID, productID string, quantity decimal.Decimal, reason, userID string) ([]domain.StockMovement, error) {
	product, err := s.inventoryRepo.LockProductInTx(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if product.ClinicID != clinicID {
		return nil, fmt.Errorf("product %s not found in clinic: %w", productID, apperrors.ErrNotFound)
	}

	batches, err := s.inventoryRepo.FindAvailableBatchesForUpdateInTx(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	plan := domain.AllocateFIFO(batches, quantity)
	if plan.HasShortfall() && s.shortfall == domain.ShortfallStrict {
		return nil, fmt.Errorf("product %s: requested %s, batches hold %s: %w",
			productID, quantity.String(), plan.Covered.String(), apperrors.ErrInsufficientStock)
	}

	now := s.now()
	movements := make([]domain.StockMovement, 0, len(plan.Allocations)+1)
	for _, alloc := range plan.Allocations {
		if err := s.inventoryRepo.DecrementBatchInTx(ctx, tx, alloc.Batch.BatchID, alloc.Quantity); err != nil {
			return nil, err
		}
		batchID := alloc.Batch.BatchID
		movements = append(movements, domain.StockMovement{
			MovementID: uuid.NewString(),
			ClinicID:   clinicID,
			ProductID:  productID,
			Type:       domain.MovementOutConsume,
			Quantity:   alloc.Quantity,
			Reason:     fmt.Sprintf("%s (Batch %s)", reason, alloc.Batch.BatchNumber),
			BatchID:    &batchID,
			CreatedBy:  userID,
			CreatedAt:  now,
		})
	}

	if plan.HasShortfall() {
		s.LogWarn(ctx, "Consumption exceeds batch stock, logging shortfall without batch",
			slog.String("product_id", productID),
			slog.String("shortfall", plan.Shortfall.String()))
		movements = append(movements, domain.StockMovement{
			MovementID: uuid.NewString(),
			ClinicID:   clinicID,
			ProductID:  productID,
			Type:       domain.MovementOutConsume,
			Quantity:   plan.Shortfall,
			Reason:     reason + " (No Batch)",
			CreatedBy:  userID,
			CreatedAt:  now,
		})
	}

	for _, m := range movements {
		if err := s.inventoryRepo.SaveMovementInTx(ctx, tx, m); err != nil {
			return nil, err
		}
	}

	if err := s.inventoryRepo.AdjustProductStockInTx(ctx, tx, productID, quantity.Neg(), nil, userID, now); err != nil {
		return nil, err
	}
	return movements, nil
}

func (s *inventoryService) GetMovements(ctx context.Context, clinicID, productID string) ([]domain.StockMovement, error) {
	product, err := s.inventoryRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	if product.ClinicID != clinicID {
		return nil, fmt.Errorf("product %s not found in clinic: %w", productID, apperrors.ErrNotFound)
	}
	movements, err := s.inventoryRepo.ListMovementsByProduct(ctx, productID, MovementHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, clinicID string) ([]domain.Product, error) {
	products, err := s.inventoryRepo.ListProductsByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *inventoryService) CheckLowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	products, err := s.inventoryRepo.ListLowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	alerts := make([]domain.LowStockAlert, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, domain.LowStockAlert{
			ClinicID:     p.ClinicID,
			ProductID:    p.ProductID,
			ProductName:  p.Name,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
		})
	}
	return alerts, nil
}
