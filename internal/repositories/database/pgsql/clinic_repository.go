package pgsql

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxClinicRepository reads clinic and provider rows owned by tenant administration.
type PgxClinicRepository struct {
	BaseRepository
}

func newPgxClinicRepository(pool *pgxpool.Pool) portsrepo.ClinicReader {
	return &PgxClinicRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClinicReader = (*PgxClinicRepository)(nil)

func (r *PgxClinicRepository) FindClinicByID(ctx context.Context, clinicID string) (*domain.Clinic, error) {
	var (
		c    domain.Clinic
		rate decimal.NullDecimal
	)
	err := r.Pool.QueryRow(ctx, `SELECT clinic_id, name, platform_fee_rate FROM clinics WHERE clinic_id = $1;`, clinicID).
		Scan(&c.ClinicID, &c.Name, &rate)
	if err != nil {
		return nil, mapError(err, "find clinic "+clinicID)
	}
	c.PlatformFeeRate = decimalPtr(rate)
	return &c, nil
}

const providerColumns = `provider_id, clinic_id, full_name, payable_destination_id, commission_rate`

func scanProvider(row pgx.Row) (domain.Provider, error) {
	var (
		p    domain.Provider
		rate decimal.NullDecimal
	)
	err := row.Scan(&p.ProviderID, &p.ClinicID, &p.FullName, &p.PayableDestinationID, &rate)
	p.CommissionRate = decimalPtr(rate)
	return p, err
}

func (r *PgxClinicRepository) FindProviderByID(ctx context.Context, providerID string) (*domain.Provider, error) {
	p, err := scanProvider(r.Pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE provider_id = $1;`, providerID))
	if err != nil {
		return nil, mapError(err, "find provider "+providerID)
	}
	return &p, nil
}

// FindProvidersByIDs silently omits ids that do not exist.
func (r *PgxClinicRepository) FindProvidersByIDs(ctx context.Context, providerIDs []string) (map[string]domain.Provider, error) {
	found := make(map[string]domain.Provider, len(providerIDs))
	if len(providerIDs) == 0 {
		return found, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+providerColumns+` FROM providers WHERE provider_id = ANY($1);`, providerIDs)
	if err != nil {
		return nil, mapError(err, "find providers")
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, mapError(err, "scan provider")
		}
		found[p.ProviderID] = p
	}
	return found, mapError(rows.Err(), "iterate providers")
}
