package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ShortfallPolicy decides what happens when batches cannot cover a consumption.
type ShortfallPolicy string

const (
	// ShortfallPermissive logs the uncovered quantity as a batch-less movement
	// and still decrements the aggregate stock by the full amount.
	ShortfallPermissive ShortfallPolicy = "permissive"
	// ShortfallStrict rejects the consumption.
	ShortfallStrict ShortfallPolicy = "strict"
)

// ParseShortfallPolicy maps a config value to a policy, defaulting to permissive.
func ParseShortfallPolicy(s string) (ShortfallPolicy, error) {
	switch ShortfallPolicy(s) {
	case "", ShortfallPermissive:
		return ShortfallPermissive, nil
	case ShortfallStrict:
		return ShortfallStrict, nil
	}
	return "", fmt.Errorf("unknown stock shortfall policy %q", s)
}

// BatchAllocation is the quantity taken from one batch.
type BatchAllocation struct {
	Batch    ProductBatch
	Quantity decimal.Decimal
}

// FIFOPlan is the result of allocating a demand across batches.
type FIFOPlan struct {
	Allocations []BatchAllocation
	Covered     decimal.Decimal
	Shortfall   decimal.Decimal
}

// HasShortfall reports whether the batches could not satisfy the demand.
func (p FIFOPlan) HasShortfall() bool {
	return p.Shortfall.IsPositive()
}

// AllocateFIFO drains batches in ascending expiration order until quantity is
// satisfied or batches run out. Batches with no remaining quantity are skipped.
// Ties on expiration date fall back to receipt order, then batch id.
func AllocateFIFO(batches []ProductBatch, quantity decimal.Decimal) FIFOPlan {
	ordered := make([]ProductBatch, 0, len(batches))
	for _, b := range batches {
		if b.Quantity.IsPositive() {
			ordered = append(ordered, b)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ExpirationDate.Equal(ordered[j].ExpirationDate) {
			return ordered[i].ExpirationDate.Before(ordered[j].ExpirationDate)
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].BatchID < ordered[j].BatchID
	})

	plan := FIFOPlan{Covered: decimal.Zero}
	remaining := quantity
	for _, b := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		plan.Allocations = append(plan.Allocations, BatchAllocation{Batch: b, Quantity: take})
		plan.Covered = plan.Covered.Add(take)
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		plan.Shortfall = remaining
	} else {
		plan.Shortfall = decimal.Zero
	}
	return plan
}
