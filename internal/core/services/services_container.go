package services

import (
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// audit may be nil, in which case state changes are not forwarded to an audit log.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, audit portssvc.AuditRecorder) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Ledger and inventory have no service dependencies
	container.Ledger = NewLedgerService(repos.LedgerRepo)
	container.Inventory = NewInventoryService(
		repos.InventoryRepo,
		WithShortfallPolicy(cfg.StockShortfallPolicy),
	)
	container.Commission = NewCommissionService(repos.CommissionRepo, repos.ClinicRepo)

	// Reconciliation replays inventory and ledger side effects
	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.TransactionRepo,
		container.Inventory,
		container.Ledger,
	)

	options := []TransactionOption{WithDefaultPlatformFeeRate(cfg.DefaultPlatformFeeRate)}
	if audit != nil {
		options = append(options, WithAuditRecorder(audit))
	}
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.ClinicRepo,
		container.Commission,
		container.Inventory,
		container.Ledger,
		container.Reconciliation,
		options...,
	)

	return container
}
