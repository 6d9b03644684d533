package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for products, batches and movements.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryWithTx {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InventoryRepositoryWithTx = (*PgxInventoryRepository)(nil)

const productColumns = `product_id, clinic_id, name, current_stock, min_stock, cost_price, sale_price,
	created_at, created_by, last_updated_at, last_updated_by`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ProductID,
		&p.ClinicID,
		&p.Name,
		&p.CurrentStock,
		&p.MinStock,
		&p.CostPrice,
		&p.SalePrice,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError(err, "scan product")
		}
		products = append(products, p)
	}
	return products, mapError(rows.Err(), "iterate products")
}

// FindProductByID retrieves a product by its ID.
func (r *PgxInventoryRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := scanProduct(r.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1;`, productID))
	if err != nil {
		return nil, mapError(err, "find product "+productID)
	}
	return &p, nil
}

func (r *PgxInventoryRepository) ListProductsByClinic(ctx context.Context, clinicID string) ([]domain.Product, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE clinic_id = $1 ORDER BY name;`, clinicID)
	if err != nil {
		return nil, mapError(err, "list products")
	}
	return collectProducts(rows)
}

// ListLowStockProducts spans every clinic; the sweep is a platform job.
func (r *PgxInventoryRepository) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE current_stock <= min_stock
		ORDER BY clinic_id, name;`)
	if err != nil {
		return nil, mapError(err, "list low stock products")
	}
	return collectProducts(rows)
}

// FindKitByID retrieves a kit and its items in position order.
func (r *PgxInventoryRepository) FindKitByID(ctx context.Context, kitID string) (*domain.ProductKit, error) {
	var kit domain.ProductKit
	err := r.Pool.QueryRow(ctx, `SELECT kit_id, clinic_id, name FROM product_kits WHERE kit_id = $1;`, kitID).
		Scan(&kit.KitID, &kit.ClinicID, &kit.Name)
	if err != nil {
		return nil, mapError(err, "find kit "+kitID)
	}

	rows, err := r.Pool.Query(ctx, `SELECT product_id, quantity FROM kit_items WHERE kit_id = $1 ORDER BY position;`, kitID)
	if err != nil {
		return nil, mapError(err, "list kit items")
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.KitItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, mapError(err, "scan kit item")
		}
		kit.Items = append(kit.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate kit items")
	}
	return &kit, nil
}

func (r *PgxInventoryRepository) ListMovementsByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT movement_id, clinic_id, product_id, type, quantity, reason, batch_id, created_by, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, movement_id DESC
		LIMIT $2;`, productID, limit)
	if err != nil {
		return nil, mapError(err, "list stock movements")
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.MovementID, &m.ClinicID, &m.ProductID, &m.Type, &m.Quantity, &m.Reason, &m.BatchID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, mapError(err, "scan stock movement")
		}
		movements = append(movements, m)
	}
	return movements, mapError(rows.Err(), "iterate stock movements")
}

// LockProductInTx selects the product row FOR UPDATE, serializing stock changes per product.
func (r *PgxInventoryRepository) LockProductInTx(ctx context.Context, tx pgx.Tx, productID string) (*domain.Product, error) {
	p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1 FOR UPDATE;`, productID))
	if err != nil {
		return nil, mapError(err, "lock product "+productID)
	}
	return &p, nil
}

func (r *PgxInventoryRepository) FindAvailableBatchesForUpdateInTx(ctx context.Context, tx pgx.Tx, productID string) ([]domain.ProductBatch, error) {
	rows, err := tx.Query(ctx, `
		SELECT batch_id, product_id, batch_number, quantity, expiration_date, created_at
		FROM product_batches
		WHERE product_id = $1 AND quantity > 0
		ORDER BY expiration_date ASC, created_at ASC, batch_id ASC
		FOR UPDATE;`, productID)
	if err != nil {
		return nil, mapError(err, "lock batches")
	}
	defer rows.Close()

	batches := []domain.ProductBatch{}
	for rows.Next() {
		var b domain.ProductBatch
		if err := rows.Scan(&b.BatchID, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.ExpirationDate, &b.CreatedAt); err != nil {
			return nil, mapError(err, "scan batch")
		}
		batches = append(batches, b)
	}
	return batches, mapError(rows.Err(), "iterate batches")
}

func (r *PgxInventoryRepository) SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.ProductBatch) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_batches (batch_id, product_id, batch_number, quantity, expiration_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		batch.BatchID, batch.ProductID, batch.BatchNumber, batch.Quantity, batch.ExpirationDate, batch.CreatedAt)
	return mapError(err, "insert batch "+batch.BatchNumber)
}

// DecrementBatchInTx refuses to take a batch below zero.
func (r *PgxInventoryRepository) DecrementBatchInTx(ctx context.Context, tx pgx.Tx, batchID string, quantity decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
		UPDATE product_batches
		SET quantity = quantity - $2
		WHERE batch_id = $1 AND quantity >= $2;`, batchID, quantity)
	if err != nil {
		return mapError(err, "decrement batch "+batchID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %s cannot cover %s: %w", batchID, quantity.String(), apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxInventoryRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, m domain.StockMovement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (movement_id, clinic_id, product_id, type, quantity, reason, batch_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		m.MovementID, m.ClinicID, m.ProductID, m.Type, m.Quantity, m.Reason, m.BatchID, m.CreatedBy, m.CreatedAt)
	return mapError(err, "insert stock movement")
}

func (r *PgxInventoryRepository) AdjustProductStockInTx(ctx context.Context, tx pgx.Tx, productID string, delta decimal.Decimal, costPrice *decimal.Decimal, userID string, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET current_stock = current_stock + $2,
		    cost_price = COALESCE($3, cost_price),
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE product_id = $1;`, productID, delta, nullDecimal(costPrice), now, userID)
	if err != nil {
		return mapError(err, "adjust stock of "+productID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, apperrors.ErrNotFound)
	}
	return nil
}
