package services

import (
	"context"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
)

// Notifier delivers low-stock alerts to clinic staff.
type Notifier interface {
	NotifyLowStock(ctx context.Context, alert domain.LowStockAlert) error
}

// AuditRecorder hands state changes to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AlertDeduper remembers which products are currently alerted.
type AlertDeduper interface {
	// NewBreaches receives every product currently breached and returns the
	// ones not alerted yet, marking them alerted. Products absent from
	// breached are forgotten so a later breach alerts again.
	NewBreaches(ctx context.Context, breached []string) ([]string, error)

	// Forget clears the alerted mark so the next sweep alerts again.
	Forget(ctx context.Context, productIDs []string) error
}

// SweepLocker guards a periodic job across instances.
type SweepLocker interface {
	// TryLock returns a release func and true when the lock was obtained.
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}
