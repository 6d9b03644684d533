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
)

type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for reconciliation tasks.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepository = (*PgxReconciliationRepository)(nil)

const taskColumns = `task_id, clinic_id, financial_transaction_id, kind, payload, status, attempts, last_error,
	next_attempt_at, created_at, updated_at`

func collectTasks(rows pgx.Rows) ([]domain.ReconciliationTask, error) {
	defer rows.Close()
	tasks := []domain.ReconciliationTask{}
	for rows.Next() {
		var t domain.ReconciliationTask
		if err := rows.Scan(
			&t.TaskID,
			&t.ClinicID,
			&t.FinancialTransactionID,
			&t.Kind,
			&t.Payload,
			&t.Status,
			&t.Attempts,
			&t.LastError,
			&t.NextAttemptAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, mapError(err, "scan reconciliation task")
		}
		tasks = append(tasks, t)
	}
	return tasks, mapError(rows.Err(), "iterate reconciliation tasks")
}

func (r *PgxReconciliationRepository) SaveTask(ctx context.Context, task domain.ReconciliationTask) error {
	payload := task.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO reconciliation_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		task.TaskID,
		task.ClinicID,
		task.FinancialTransactionID,
		task.Kind,
		string(payload),
		task.Status,
		task.Attempts,
		task.LastError,
		task.NextAttemptAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return mapError(err, "insert reconciliation task")
}

// ClaimDueTasks leases due tasks by pushing next_attempt_at forward. SKIP LOCKED
// keeps concurrent workers from claiming the same rows.
func (r *PgxReconciliationRepository) ClaimDueTasks(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.ReconciliationTask, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE reconciliation_tasks
		SET next_attempt_at = $2
		WHERE task_id IN (
			SELECT task_id FROM reconciliation_tasks
			WHERE status = $3 AND next_attempt_at <= $1
			ORDER BY next_attempt_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+taskColumns+`;`,
		now, now.Add(lease), domain.ReconciliationPending, limit)
	if err != nil {
		return nil, mapError(err, "claim reconciliation tasks")
	}
	return collectTasks(rows)
}

func (r *PgxReconciliationRepository) UpdateTask(ctx context.Context, task domain.ReconciliationTask) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE reconciliation_tasks
		SET status = $2, attempts = $3, last_error = $4, next_attempt_at = $5, updated_at = $6
		WHERE task_id = $1;`,
		task.TaskID, task.Status, task.Attempts, task.LastError, task.NextAttemptAt, task.UpdatedAt)
	if err != nil {
		return mapError(err, "update reconciliation task "+task.TaskID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reconciliation task %s: %w", task.TaskID, apperrors.ErrNotFound)
	}
	return nil
}

// ListTasks returns every task of the clinic when status is empty.
func (r *PgxReconciliationRepository) ListTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM reconciliation_tasks
		WHERE clinic_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC;`, clinicID, string(status))
	if err != nil {
		return nil, mapError(err, "list reconciliation tasks")
	}
	return collectTasks(rows)
}
