package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/google/uuid"
)

// reconciliationService records failed side effects and replays them.
type reconciliationService struct {
	BaseService
	reconRepo portsrepo.ReconciliationRepository
	txnRepo   portsrepo.FinancialTransactionReader
	inventory portssvc.StockWriterSvc
	ledger    portssvc.LedgerSvcFacade
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepository,
	txnRepo portsrepo.FinancialTransactionReader,
	inventory portssvc.StockWriterSvc,
	ledger portssvc.LedgerSvcFacade,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo: reconRepo,
		txnRepo:   txnRepo,
		inventory: inventory,
		ledger:    ledger,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) Enqueue(ctx context.Context, clinicID, transactionID string, kind domain.ReconciliationKind, payload any, cause error) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	now := s.now()
	task := domain.ReconciliationTask{
		TaskID:                 uuid.NewString(),
		ClinicID:               clinicID,
		FinancialTransactionID: transactionID,
		Kind:                   kind,
		Payload:                raw,
		Status:                 domain.ReconciliationPending,
		NextAttemptAt:          now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if cause != nil {
		task.LastError = cause.Error()
	}

	if err := s.reconRepo.SaveTask(ctx, task); err != nil {
		s.LogError(ctx, err, "Failed to record reconciliation task",
			slog.String("transaction_id", transactionID),
			slog.String("kind", string(kind)))
		return fmt.Errorf("failed to save reconciliation task: %w", err)
	}
	s.LogWarn(ctx, "Side effect deferred to reconciliation",
		slog.String("task_id", task.TaskID),
		slog.String("transaction_id", transactionID),
		slog.String("kind", string(kind)),
		slog.String("cause", task.LastError))
	return nil
}

func (s *reconciliationService) ListReconciliationTasks(ctx context.Context, clinicID string, status domain.ReconciliationStatus) ([]domain.ReconciliationTask, error) {
	tasks, err := s.reconRepo.ListTasks(ctx, clinicID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation tasks: %w", err)
	}
	return tasks, nil
}

// Replay re-applies a task. Ledger replays are idempotent: postings are
// skipped when the transaction already has entries or is no longer
// COMPLETED, and reversals only touch entries not yet compensated.
func (s *reconciliationService) Replay(ctx context.Context, task domain.ReconciliationTask) error {
	switch task.Kind {
	case domain.ReconcileStockConsumption:
		var p domain.StockConsumptionPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode stock payload: %w", err)
		}
		_, err := s.inventory.Consume(ctx, task.ClinicID, dto.ConsumeRequest{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Reason:    p.Reason,
		}, p.UserID)
		return err

	case domain.ReconcileLedgerPosting:
		txn, err := s.txnRepo.FindTransactionByID(ctx, task.FinancialTransactionID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusCompleted {
			s.LogInfo(ctx, "Transaction no longer completed, nothing to post",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("status", string(txn.Status)))
			return nil
		}
		existing, err := s.ledger.ListEntriesByTransaction(ctx, txn.TransactionID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		if _, err := (ledgerPoster{ledger: s.ledger}).Post(ctx, *txn, txn.LastUpdatedBy); err != nil {
			return err
		}
		latest, err := s.txnRepo.FindTransactionByID(ctx, txn.TransactionID)
		if err != nil {
			return err
		}
		if latest.Status != domain.StatusCanceled {
			return nil
		}
		// Canceled while posting; the cancel had nothing to reverse yet.
		posted, err := s.ledger.ListUnreversedEntriesByTransaction(ctx, txn.TransactionID)
		if err != nil {
			return err
		}
		_, err = s.ledger.ReverseEntries(ctx, posted, reversalDescription(latest), latest.LastUpdatedBy)
		return err

	case domain.ReconcileLedgerReversal:
		var p domain.LedgerReversalPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode reversal payload: %w", err)
		}
		txn, err := s.txnRepo.FindTransactionByID(ctx, task.FinancialTransactionID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusCanceled {
			s.LogInfo(ctx, "Transaction not canceled, nothing to reverse",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("status", string(txn.Status)))
			return nil
		}
		entries, err := s.ledger.ListUnreversedEntriesByTransaction(ctx, task.FinancialTransactionID)
		if err != nil {
			return err
		}
		entries = onlyEntries(entries, p.EntryIDs)
		if len(entries) == 0 {
			return nil
		}
		_, err = s.ledger.ReverseEntries(ctx, entries, reversalDescription(txn), txn.LastUpdatedBy)
		return err
	}
	return fmt.Errorf("unknown reconciliation kind %q", task.Kind)
}

// onlyEntries keeps the entries listed in ids; an empty ids keeps all.
func onlyEntries(entries []domain.LedgerEntry, ids []string) []domain.LedgerEntry {
	if len(ids) == 0 {
		return entries
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := entries[:0]
	for _, e := range entries {
		if wanted[e.EntryID] {
			kept = append(kept, e)
		}
	}
	return kept
}

func reversalDescription(txn *domain.FinancialTransaction) string {
	return "Reversal: " + strings.TrimPrefix(txn.Description, domain.CanceledDescriptionPrefix)
}
