package alertstore

import (
	"context"
	"time"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/patrickmn/go-cache"
)

// MemoryAlertDeduper keeps alert marks in process memory. Marks are lost on
// restart, so a still-breached product alerts once more after a deploy.
type MemoryAlertDeduper struct {
	marks *cache.Cache
}

// NewMemoryAlertDeduper creates a deduper whose marks never expire on their own.
func NewMemoryAlertDeduper() *MemoryAlertDeduper {
	return &MemoryAlertDeduper{marks: cache.New(cache.NoExpiration, 10*time.Minute)}
}

var _ portssvc.AlertDeduper = (*MemoryAlertDeduper)(nil)

func (d *MemoryAlertDeduper) NewBreaches(_ context.Context, breached []string) ([]string, error) {
	current := make(map[string]bool, len(breached))
	for _, id := range breached {
		current[id] = true
	}
	for id := range d.marks.Items() {
		if !current[id] {
			d.marks.Delete(id)
		}
	}

	fresh := []string{}
	for _, id := range breached {
		// Add fails when the mark already exists.
		if err := d.marks.Add(id, struct{}{}, cache.NoExpiration); err == nil {
			fresh = append(fresh, id)
		}
	}
	return fresh, nil
}

func (d *MemoryAlertDeduper) Forget(_ context.Context, productIDs []string) error {
	for _, id := range productIDs {
		d.marks.Delete(id)
	}
	return nil
}
