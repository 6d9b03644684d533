package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementInPurchase MovementType = "IN_PURCHASE"
	MovementOutConsume MovementType = "OUT_CONSUME"
)

// Product is a stock-keeping item of a clinic. CurrentStock is the aggregate
// of its batches (plus any permissive shortfall) and is maintained in the
// same database transaction as every batch mutation.
type Product struct {
	ProductID    string          `json:"productID"`
	ClinicID     string          `json:"clinicID"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	MinStock     decimal.Decimal `json:"minStock"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	AuditFields
}

// IsBelowMinimum reports whether the product has reached its alert threshold.
func (p Product) IsBelowMinimum() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinStock)
}

// ProductBatch is a dated lot of one product. Quantity is what remains and
// never goes below zero; new inbound stock always creates a new batch.
type ProductBatch struct {
	BatchID        string          `json:"batchID"`
	ProductID      string          `json:"productID"`
	BatchNumber    string          `json:"batchNumber"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExpirationDate time.Time       `json:"expirationDate"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// StockMovement is an append-only stock log line. BatchID is nil for the
// shortfall line of a permissive consumption.
type StockMovement struct {
	MovementID string          `json:"movementID"`
	ClinicID   string          `json:"clinicID"`
	ProductID  string          `json:"productID"`
	Type       MovementType    `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
	BatchID    *string         `json:"batchID,omitempty"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ProductKit is a named bundle of products consumed together.
type ProductKit struct {
	KitID    string    `json:"kitID"`
	ClinicID string    `json:"clinicID"`
	Name     string    `json:"name"`
	Items    []KitItem `json:"items"`
}

// KitItem is one product of a kit and the quantity used per kit unit.
type KitItem struct {
	ProductID string          `json:"productID"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LowStockAlert is what the sweep hands to the notification collaborator.
type LowStockAlert struct {
	ClinicID     string          `json:"clinicID"`
	ProductID    string          `json:"productID"`
	ProductName  string          `json:"productName"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	MinStock     decimal.Decimal `json:"minStock"`
}
