package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memInventoryRepo is an in-memory inventory store whose Begin snapshots the
// state and Rollback restores it, so atomicity can be asserted.
type memInventoryRepo struct {
	mu        sync.Mutex
	products  map[string]domain.Product
	batches   map[string]domain.ProductBatch
	kits      map[string]domain.ProductKit
	movements []domain.StockMovement

	snapshot *memInventoryState
	commits  int
	rollback int

	// failMovementFor makes SaveMovementInTx fail for the given product.
	failMovementFor string
}

type memInventoryState struct {
	products  map[string]domain.Product
	batches   map[string]domain.ProductBatch
	movements []domain.StockMovement
}

var _ portsrepo.InventoryRepositoryWithTx = (*memInventoryRepo)(nil)

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{
		products: map[string]domain.Product{},
		batches:  map[string]domain.ProductBatch{},
		kits:     map[string]domain.ProductKit{},
	}
}

func (r *memInventoryRepo) addProduct(p domain.Product) {
	r.products[p.ProductID] = p
}

func (r *memInventoryRepo) addBatch(b domain.ProductBatch) {
	r.batches[b.BatchID] = b
}

func (r *memInventoryRepo) stock(productID string) decimal.Decimal {
	return r.products[productID].CurrentStock
}

func (r *memInventoryRepo) batchQty(batchID string) decimal.Decimal {
	return r.batches[batchID].Quantity
}

func (r *memInventoryRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := &memInventoryState{
		products:  make(map[string]domain.Product, len(r.products)),
		batches:   make(map[string]domain.ProductBatch, len(r.batches)),
		movements: append([]domain.StockMovement(nil), r.movements...),
	}
	for k, v := range r.products {
		state.products[k] = v
	}
	for k, v := range r.batches {
		state.batches[k] = v
	}
	r.snapshot = state
	return nil, nil
}

func (r *memInventoryRepo) Commit(ctx context.Context, tx pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = nil
	r.commits++
	return nil
}

func (r *memInventoryRepo) Rollback(ctx context.Context, tx pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return nil
	}
	r.products = r.snapshot.products
	r.batches = r.snapshot.batches
	r.movements = r.snapshot.movements
	r.snapshot = nil
	r.rollback++
	return nil
}

func (r *memInventoryRepo) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r *memInventoryRepo) ListProductsByClinic(ctx context.Context, clinicID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.ClinicID == clinicID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memInventoryRepo) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.IsBelowMinimum() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memInventoryRepo) FindKitByID(ctx context.Context, kitID string) (*domain.ProductKit, error) {
	k, ok := r.kits[kitID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &k, nil
}

func (r *memInventoryRepo) ListMovementsByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	var out []domain.StockMovement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.movements[i].ProductID == productID {
			out = append(out, r.movements[i])
		}
	}
	return out, nil
}

func (r *memInventoryRepo) LockProductInTx(ctx context.Context, tx pgx.Tx, productID string) (*domain.Product, error) {
	return r.FindProductByID(ctx, productID)
}

func (r *memInventoryRepo) FindAvailableBatchesForUpdateInTx(ctx context.Context, tx pgx.Tx, productID string) ([]domain.ProductBatch, error) {
	var out []domain.ProductBatch
	for _, b := range r.batches {
		if b.ProductID == productID && b.Quantity.IsPositive() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpirationDate.Before(out[j].ExpirationDate) })
	return out, nil
}

func (r *memInventoryRepo) SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.ProductBatch) error {
	r.batches[batch.BatchID] = batch
	return nil
}

func (r *memInventoryRepo) DecrementBatchInTx(ctx context.Context, tx pgx.Tx, batchID string, quantity decimal.Decimal) error {
	b, ok := r.batches[batchID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if b.Quantity.LessThan(quantity) {
		return errors.New("batch quantity would go negative")
	}
	b.Quantity = b.Quantity.Sub(quantity)
	r.batches[batchID] = b
	return nil
}

func (r *memInventoryRepo) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	if r.failMovementFor != "" && movement.ProductID == r.failMovementFor {
		return errors.New("movement insert failed")
	}
	r.movements = append(r.movements, movement)
	return nil
}

func (r *memInventoryRepo) AdjustProductStockInTx(ctx context.Context, tx pgx.Tx, productID string, delta decimal.Decimal, costPrice *decimal.Decimal, userID string, now time.Time) error {
	p, ok := r.products[productID]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.CurrentStock = p.CurrentStock.Add(delta)
	if costPrice != nil {
		p.CostPrice = *costPrice
	}
	p.LastUpdatedAt = now
	p.LastUpdatedBy = userID
	r.products[productID] = p
	return nil
}
