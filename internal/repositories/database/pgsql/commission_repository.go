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

type PgxCommissionRepository struct {
	BaseRepository
}

// newPgxCommissionRepository creates a new repository for commission rules and logs.
func newPgxCommissionRepository(pool *pgxpool.Pool) portsrepo.CommissionRepositoryFacade {
	return &PgxCommissionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CommissionRepositoryFacade = (*PgxCommissionRepository)(nil)

const ruleColumns = `rule_id, clinic_id, provider_id, service_id, rule_type, provider_fixed_value, clinic_margin_percent, created_at, created_by`

func collectRules(rows pgx.Rows) ([]domain.CommissionRule, error) {
	defer rows.Close()
	rules := []domain.CommissionRule{}
	for rows.Next() {
		var (
			rule          domain.CommissionRule
			fixed, margin decimal.NullDecimal
		)
		if err := rows.Scan(
			&rule.RuleID,
			&rule.ClinicID,
			&rule.ProviderID,
			&rule.ServiceID,
			&rule.RuleType,
			&fixed,
			&margin,
			&rule.CreatedAt,
			&rule.CreatedBy,
		); err != nil {
			return nil, mapError(err, "scan commission rule")
		}
		rule.ProviderFixedValue = decimalPtr(fixed)
		rule.ClinicMarginPercent = decimalPtr(margin)
		rules = append(rules, rule)
	}
	return rules, mapError(rows.Err(), "iterate commission rules")
}

// SaveRule inserts a rule. A second rule for the same provider and service is a duplicate.
func (r *PgxCommissionRepository) SaveRule(ctx context.Context, rule domain.CommissionRule) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO commission_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		rule.RuleID,
		rule.ClinicID,
		rule.ProviderID,
		rule.ServiceID,
		rule.RuleType,
		nullDecimal(rule.ProviderFixedValue),
		nullDecimal(rule.ClinicMarginPercent),
		rule.CreatedAt,
		rule.CreatedBy,
	)
	return mapError(err, "insert commission rule")
}

func (r *PgxCommissionRepository) DeleteRule(ctx context.Context, clinicID, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM commission_rules WHERE rule_id = $1 AND clinic_id = $2;`, ruleID, clinicID)
	if err != nil {
		return mapError(err, "delete commission rule "+ruleID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commission rule %s: %w", ruleID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxCommissionRepository) ListRulesByClinic(ctx context.Context, clinicID string) ([]domain.CommissionRule, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM commission_rules
		WHERE clinic_id = $1
		ORDER BY provider_id, service_id NULLS FIRST;`, clinicID)
	if err != nil {
		return nil, mapError(err, "list commission rules")
	}
	return collectRules(rows)
}

func (r *PgxCommissionRepository) FindRulesForProvider(ctx context.Context, clinicID, providerID string) ([]domain.CommissionRule, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM commission_rules
		WHERE clinic_id = $1 AND provider_id = $2;`, clinicID, providerID)
	if err != nil {
		return nil, mapError(err, "find commission rules")
	}
	return collectRules(rows)
}

const logColumns = `log_id, clinic_id, provider_id, service_name, sale_price, provider_amount, clinic_amount,
	status, financial_transaction_id, created_at, paid_at`

const insertLogQuery = `INSERT INTO commission_logs (` + logColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

func logArgs(l domain.CommissionLog) []any {
	return []any{
		l.LogID,
		l.ClinicID,
		l.ProviderID,
		l.ServiceName,
		l.SalePrice,
		l.ProviderAmount,
		l.ClinicAmount,
		l.Status,
		l.FinancialTransactionID,
		l.CreatedAt,
		l.PaidAt,
	}
}

func (r *PgxCommissionRepository) SaveLog(ctx context.Context, log domain.CommissionLog) error {
	_, err := r.Pool.Exec(ctx, insertLogQuery, logArgs(log)...)
	return mapError(err, "insert commission log")
}

// ListLogsByClinicBetween returns logs created in [start, end), oldest first.
func (r *PgxCommissionRepository) ListLogsByClinicBetween(ctx context.Context, clinicID string, start, end time.Time) ([]domain.CommissionLog, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+logColumns+`
		FROM commission_logs
		WHERE clinic_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, log_id;`, clinicID, start, end)
	if err != nil {
		return nil, mapError(err, "list commission logs")
	}
	defer rows.Close()

	logs := []domain.CommissionLog{}
	for rows.Next() {
		var l domain.CommissionLog
		if err := rows.Scan(
			&l.LogID,
			&l.ClinicID,
			&l.ProviderID,
			&l.ServiceName,
			&l.SalePrice,
			&l.ProviderAmount,
			&l.ClinicAmount,
			&l.Status,
			&l.FinancialTransactionID,
			&l.CreatedAt,
			&l.PaidAt,
		); err != nil {
			return nil, mapError(err, "scan commission log")
		}
		logs = append(logs, l)
	}
	return logs, mapError(rows.Err(), "iterate commission logs")
}

// MarkLogsPaid only touches PENDING logs of the clinic; paid or foreign ids are ignored.
func (r *PgxCommissionRepository) MarkLogsPaid(ctx context.Context, clinicID string, logIDs []string, paidAt time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE commission_logs
		SET status = $1, paid_at = $2
		WHERE clinic_id = $3 AND log_id = ANY($4) AND status = $5;`,
		domain.CommissionPaid, paidAt, clinicID, logIDs, domain.CommissionPending)
	if err != nil {
		return 0, mapError(err, "mark commission logs paid")
	}
	return tag.RowsAffected(), nil
}
