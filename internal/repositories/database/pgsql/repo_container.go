package pgsql

import (
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:         newPgxLedgerRepository(dbPool),
		InventoryRepo:      newPgxInventoryRepository(dbPool),
		CommissionRepo:     newPgxCommissionRepository(dbPool),
		TransactionRepo:    newPgxTransactionRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		ClinicRepo:         newPgxClinicRepository(dbPool),
	}
}
