package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for financial transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.FinancialTransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FinancialTransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, clinic_id, type, amount, description, category, payment_method, status,
	tutor_id, platform_fee, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (domain.FinancialTransaction, error) {
	var (
		t   domain.FinancialTransaction
		fee decimal.NullDecimal
	)
	err := row.Scan(
		&t.TransactionID,
		&t.ClinicID,
		&t.Type,
		&t.Amount,
		&t.Description,
		&t.Category,
		&t.PaymentMethod,
		&t.Status,
		&t.TutorID,
		&fee,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	t.PlatformFee = decimalPtr(fee)
	return t, err
}

// FindTransactionByID retrieves a financial transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM financial_transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapError(err, "find transaction "+transactionID)
	}
	return &txn, nil
}

// ListTransactions applies every non-empty filter field. To is exclusive.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, clinicID string, filter domain.TransactionFilter) ([]domain.FinancialTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM financial_transactions WHERE clinic_id = $1`
	args := []interface{}{clinicID}

	where := func(clause string, value interface{}) {
		args = append(args, value)
		query += " AND " + clause + " $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		where("status =", filter.Status)
	}
	if filter.Type != "" {
		where("type =", filter.Type)
	}
	if filter.TutorID != "" {
		where("tutor_id =", filter.TutorID)
	}
	if filter.From != nil {
		where("created_at >=", *filter.From)
	}
	if filter.To != nil {
		where("created_at <", *filter.To)
	}
	query += " ORDER BY created_at DESC, transaction_id DESC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list transactions")
	}
	defer rows.Close()

	txns := []domain.FinancialTransaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, mapError(err, "scan transaction")
		}
		txns = append(txns, txn)
	}
	return txns, mapError(rows.Err(), "iterate transactions")
}

// SaveTransactionWithCommissions writes the transaction and its logs atomically.
func (r *PgxTransactionRepository) SaveTransactionWithCommissions(ctx context.Context, txn domain.FinancialTransaction, logs []domain.CommissionLog) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO financial_transactions (`+transactionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
			txn.TransactionID,
			txn.ClinicID,
			txn.Type,
			txn.Amount,
			txn.Description,
			txn.Category,
			txn.PaymentMethod,
			txn.Status,
			txn.TutorID,
			nullDecimal(txn.PlatformFee),
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
		if err != nil {
			return mapError(err, "insert transaction "+txn.TransactionID)
		}
		if len(logs) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, l := range logs {
			batch.Queue(insertLogQuery, logArgs(l)...)
		}
		br := tx.SendBatch(ctx, batch)
		for range logs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return mapError(err, "insert commission log")
			}
		}
		return mapError(br.Close(), "insert commission logs")
	})
}

// UpdateTransactionStatus is a compare-and-set on the status column.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, expected, next domain.TransactionStatus, description string, userID string, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE financial_transactions
		SET status = $3, description = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1 AND status = $2;`,
		transactionID, expected, next, description, now, userID)
	if err != nil {
		return mapError(err, "update transaction "+transactionID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current domain.TransactionStatus
	err = r.Pool.QueryRow(ctx, `SELECT status FROM financial_transactions WHERE transaction_id = $1;`, transactionID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	if err != nil {
		return mapError(err, "read transaction status")
	}
	return fmt.Errorf("transaction %s is %s, expected %s: %w", transactionID, current, expected, apperrors.ErrConflict)
}
