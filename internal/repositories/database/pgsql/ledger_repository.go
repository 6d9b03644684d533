package pgsql

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for accounts and ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const accountColumns = `account_id, clinic_id, code, name, account_type, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.ClinicID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.Balance,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxLedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapError(err, "find account "+accountID)
	}
	return &account, nil
}

// ListAccountsByClinic returns the chart of accounts ordered by code, then name.
func (r *PgxLedgerRepository) ListAccountsByClinic(ctx context.Context, clinicID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE clinic_id = $1 ORDER BY code, name;`
	rows, err := r.Pool.Query(ctx, query, clinicID)
	if err != nil {
		return nil, mapError(err, "list accounts")
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "scan account")
		}
		accounts = append(accounts, account)
	}
	return accounts, mapError(rows.Err(), "iterate accounts")
}

// FindOrCreateAccount inserts the account unless the clinic already has one
// with the same name, and returns the stored row either way. The no-op
// update makes RETURNING yield the existing row on conflict.
func (r *PgxLedgerRepository) FindOrCreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (clinic_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + accountColumns + `;`
	stored, err := scanAccount(r.Pool.QueryRow(ctx, query,
		account.AccountID,
		account.ClinicID,
		account.Code,
		account.Name,
		account.AccountType,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	))
	if err != nil {
		return nil, mapError(err, "find or create account "+account.Name)
	}
	return &stored, nil
}

// SaveEntry inserts the entry and moves both balances in one transaction.
// Accounts are locked in id order so concurrent postings cannot deadlock.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		ids := []string{entry.DebitAccountID, entry.CreditAccountID}
		sort.Strings(ids)

		rows, err := tx.Query(ctx, `
			SELECT account_id FROM accounts
			WHERE account_id = ANY($1) AND clinic_id = $2
			ORDER BY account_id
			FOR UPDATE;`, ids, entry.ClinicID)
		if err != nil {
			return mapError(err, "lock accounts")
		}
		locked := 0
		for rows.Next() {
			locked++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return mapError(err, "lock accounts")
		}
		if locked != 2 {
			return fmt.Errorf("entry accounts not found in clinic: %w", apperrors.ErrNotFound)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (
				entry_id, clinic_id, description, amount, debit_account_id, credit_account_id,
				financial_transaction_id, reverses_entry_id, transaction_date, created_at, created_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
			entry.EntryID,
			entry.ClinicID,
			entry.Description,
			entry.Amount,
			entry.DebitAccountID,
			entry.CreditAccountID,
			entry.FinancialTransactionID,
			entry.ReversesEntryID,
			entry.TransactionDate,
			entry.CreatedAt,
			entry.CreatedBy,
		)
		if err != nil {
			return mapError(err, "insert ledger entry "+entry.EntryID)
		}

		_, err = tx.Exec(ctx, `
			UPDATE accounts
			SET balance = balance + CASE WHEN account_id = $2 THEN $1::numeric ELSE -$1::numeric END,
			    last_updated_at = $4,
			    last_updated_by = $5
			WHERE account_id IN ($2, $3);`,
			entry.Amount,
			entry.DebitAccountID,
			entry.CreditAccountID,
			entry.CreatedAt,
			entry.CreatedBy,
		)
		return mapError(err, "update account balances")
	})
}

const entryColumns = `entry_id, clinic_id, description, amount, debit_account_id, credit_account_id,
	financial_transaction_id, reverses_entry_id, transaction_date, created_at, created_by`

func scanEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.ClinicID,
			&e.Description,
			&e.Amount,
			&e.DebitAccountID,
			&e.CreditAccountID,
			&e.FinancialTransactionID,
			&e.ReversesEntryID,
			&e.TransactionDate,
			&e.CreatedAt,
			&e.CreatedBy,
		); err != nil {
			return nil, mapError(err, "scan ledger entry")
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err(), "iterate ledger entries")
}

// ListEntriesByTransaction returns every entry of a transaction, oldest first.
func (r *PgxLedgerRepository) ListEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE financial_transaction_id = $1
		ORDER BY created_at, entry_id;`, transactionID)
	if err != nil {
		return nil, mapError(err, "list ledger entries")
	}
	return scanEntries(rows)
}

// ListUnreversedEntriesByTransaction returns original entries with no reversal yet.
func (r *PgxLedgerRepository) ListUnreversedEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries e
		WHERE e.financial_transaction_id = $1
		  AND e.reverses_entry_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM ledger_entries r WHERE r.reverses_entry_id = e.entry_id)
		ORDER BY e.created_at, e.entry_id;`, transactionID)
	if err != nil {
		return nil, mapError(err, "list unreversed ledger entries")
	}
	return scanEntries(rows)
}
