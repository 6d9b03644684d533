package repositories

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// ClinicReader reads tenant and provider data owned by other modules.
type ClinicReader interface {
	FindClinicByID(ctx context.Context, clinicID string) (*domain.Clinic, error)
	FindProviderByID(ctx context.Context, providerID string) (*domain.Provider, error)

	// FindProvidersByIDs returns the providers found, keyed by id. Missing ids are absent.
	FindProvidersByIDs(ctx context.Context, providerIDs []string) (map[string]domain.Provider, error)
}
