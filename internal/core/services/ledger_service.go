package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/vet_clinic_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerService implements the LedgerSvcFacade interface
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(repo portsrepo.LedgerRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: repo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) CreateAccount(ctx context.Context, clinicID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("account name is required: %w", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("invalid account type %q: %w", req.AccountType, apperrors.ErrValidation)
	}

	now := s.now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		ClinicID:    clinicID,
		Code:        strings.TrimSpace(req.Code),
		Name:        name,
		AccountType: req.AccountType,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	stored, err := s.ledgerRepo.FindOrCreateAccount(ctx, account)
	if err != nil {
		s.LogError(ctx, err, "Failed to find or create account",
			slog.String("clinic_id", clinicID),
			slog.String("account_name", name))
		return nil, fmt.Errorf("failed to find or create account: %w", err)
	}
	if stored.AccountType != req.AccountType {
		s.LogWarn(ctx, "Existing account has a different type than requested",
			slog.String("account_id", stored.AccountID),
			slog.String("stored_type", string(stored.AccountType)),
			slog.String("requested_type", string(req.AccountType)))
	}
	return stored, nil
}

func (s *ledgerService) RecordEntry(ctx context.Context, clinicID string, req dto.RecordEntryRequest, userID string) (*domain.LedgerEntry, error) {
	amount := domain.RoundMoney(req.Amount)
	if err := accounting.ValidateEntry(amount, req.DebitAccountID, req.CreditAccountID); err != nil {
		s.LogWarn(ctx, "Rejected ledger entry", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = *req.TransactionDate
	}

	entry := domain.LedgerEntry{
		EntryID:                uuid.NewString(),
		ClinicID:               clinicID,
		Description:            req.Description,
		Amount:                 amount,
		DebitAccountID:         req.DebitAccountID,
		CreditAccountID:        req.CreditAccountID,
		FinancialTransactionID: req.FinancialTransactionID,
		TransactionDate:        txnDate,
		CreatedAt:              now,
		CreatedBy:              userID,
	}

	if err := s.ledgerRepo.SaveEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to record ledger entry",
			slog.String("debit_account_id", entry.DebitAccountID),
			slog.String("credit_account_id", entry.CreditAccountID))
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	s.LogInfo(ctx, "Ledger entry recorded",
		slog.String("entry_id", entry.EntryID),
		slog.String("amount", amount.String()))
	return &entry, nil
}

// ReverseEntries posts one compensating entry per original. It keeps going
// after a failure and returns the ids it could not reverse with the joined errors.
func (s *ledgerService) ReverseEntries(ctx context.Context, entries []domain.LedgerEntry, description string, userID string) ([]string, error) {
	var failed []string
	var errs []error
	for _, original := range entries {
		now := s.now()
		reversal := original.Reversal(description, now)
		reversal.EntryID = uuid.NewString()
		reversal.CreatedAt = now
		reversal.CreatedBy = userID

		err := s.ledgerRepo.SaveEntry(ctx, reversal)
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Reversed concurrently.
			s.LogInfo(ctx, "Entry already reversed", slog.String("entry_id", original.EntryID))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to post reversal entry", slog.String("entry_id", original.EntryID))
			failed = append(failed, original.EntryID)
			errs = append(errs, fmt.Errorf("reverse entry %s: %w", original.EntryID, err))
		}
	}
	return failed, errors.Join(errs...)
}

func (s *ledgerService) GetBalance(ctx context.Context, clinicID, accountID string) (decimal.Decimal, error) {
	account, err := s.ledgerRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	if account.ClinicID != clinicID {
		return decimal.Zero, fmt.Errorf("account %s not found in clinic: %w", accountID, apperrors.ErrNotFound)
	}
	return account.Balance, nil
}

func (s *ledgerService) GetTrialBalance(ctx context.Context, clinicID string) ([]domain.Account, error) {
	accounts, err := s.ledgerRepo.ListAccountsByClinic(ctx, clinicID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("clinic_id", clinicID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if _, _, net := accounting.TrialBalanceTotals(accounts); !net.IsZero() {
		s.LogWarn(ctx, "Trial balance does not net to zero",
			slog.String("clinic_id", clinicID),
			slog.String("net", net.String()))
	}
	return accounts, nil
}

func (s *ledgerService) ListEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of transaction %s: %w", transactionID, err)
	}
	return entries, nil
}

func (s *ledgerService) ListUnreversedEntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListUnreversedEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreversed entries of transaction %s: %w", transactionID, err)
	}
	return entries, nil
}
