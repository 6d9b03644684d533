// Package notification delivers low-stock alerts and audit events to the
// structured log. Log shippers pick them up from there.
package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
)

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) NotifyLowStock(ctx context.Context, alert domain.LowStockAlert) error {
	n.logger.WarnContext(ctx, "Low stock",
		slog.String("clinic_id", alert.ClinicID),
		slog.String("product_id", alert.ProductID),
		slog.String("product_name", alert.ProductName),
		slog.String("current_stock", alert.CurrentStock.String()),
		slog.String("min_stock", alert.MinStock.String()),
	)
	return nil
}

type LogAuditRecorder struct {
	logger *slog.Logger
}

func NewLogAuditRecorder(logger *slog.Logger) *LogAuditRecorder {
	return &LogAuditRecorder{logger: logger.With(slog.String("channel", "audit"))}
}

var _ portssvc.AuditRecorder = (*LogAuditRecorder)(nil)

func (r *LogAuditRecorder) Record(ctx context.Context, event domain.AuditEvent) error {
	attrs := []any{
		slog.String("clinic_id", event.ClinicID),
		slog.String("user_id", event.UserID),
		slog.String("action", event.Action),
		slog.String("entity_type", event.EntityType),
		slog.String("entity_id", event.EntityID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, slog.Any("details", event.Details))
	}
	r.logger.InfoContext(ctx, "Audit event", attrs...)
	return nil
}
