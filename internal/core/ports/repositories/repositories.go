package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	LedgerRepo         LedgerRepositoryFacade
	InventoryRepo      InventoryRepositoryWithTx
	CommissionRepo     CommissionRepositoryFacade
	TransactionRepo    FinancialTransactionRepositoryFacade
	ReconciliationRepo ReconciliationRepository
	ClinicRepo         ClinicReader
}
