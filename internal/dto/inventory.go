package dto

import (
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InboundRequest records the receipt of a new batch.
type InboundRequest struct {
	ProductID      string          `json:"productID" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required,gt=0" swaggertype:"string" example:"10"`
	BatchNumber    string          `json:"batchNumber" binding:"required"`
	ExpirationDate time.Time       `json:"expirationDate" binding:"required"`
	CostPrice      decimal.Decimal `json:"costPrice" binding:"gte=0" swaggertype:"string" example:"12.50"`
	Provider       string          `json:"provider"`      // Optional supplier name
	InvoiceNumber  string          `json:"invoiceNumber"` // Optional supplier invoice
}

// ConsumeRequest deducts stock of one product.
type ConsumeRequest struct {
	ProductID string          `json:"productID" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,gt=0" swaggertype:"string" example:"2"`
	Reason    string          `json:"reason" binding:"required"`
}

// KitConsumeRequest deducts every item of a kit, multiplied by Quantity.
type KitConsumeRequest struct {
	KitID           string          `json:"kitID" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required,gt=0" swaggertype:"string" example:"1"`
	MedicalRecordID string          `json:"medicalRecordID"` // Optional
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ProductID    string `json:"productID"`
	Name         string `json:"name"`
	CurrentStock string `json:"currentStock"`
	MinStock     string `json:"minStock"`
	CostPrice    string `json:"costPrice"`
	SalePrice    string `json:"salePrice"`
	BelowMinimum bool   `json:"belowMinimum"`
}

// BatchResponse defines the data returned for a batch.
type BatchResponse struct {
	BatchID        string    `json:"batchID"`
	ProductID      string    `json:"productID"`
	BatchNumber    string    `json:"batchNumber"`
	Quantity       string    `json:"quantity"`
	ExpirationDate time.Time `json:"expirationDate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StockMovementResponse defines the data returned for a stock movement.
type StockMovementResponse struct {
	MovementID string              `json:"movementID"`
	ProductID  string              `json:"productID"`
	Type       domain.MovementType `json:"type"`
	Quantity   string              `json:"quantity"`
	Reason     string              `json:"reason"`
	BatchID    *string             `json:"batchID,omitempty"`
	CreatedBy  string              `json:"createdBy"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ToProductResponse converts a domain.Product to ProductResponse DTO.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:    p.ProductID,
		Name:         p.Name,
		CurrentStock: p.CurrentStock.String(),
		MinStock:     p.MinStock.String(),
		CostPrice:    Money(p.CostPrice),
		SalePrice:    Money(p.SalePrice),
		BelowMinimum: p.IsBelowMinimum(),
	}
}

// ToListProductResponse converts a slice of domain.Product to ProductResponse DTOs.
func ToListProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i, p := range products {
		res[i] = ToProductResponse(&p)
	}
	return res
}

// ToBatchResponse converts a domain.ProductBatch to BatchResponse DTO.
func ToBatchResponse(b *domain.ProductBatch) BatchResponse {
	return BatchResponse{
		BatchID:        b.BatchID,
		ProductID:      b.ProductID,
		BatchNumber:    b.BatchNumber,
		Quantity:       b.Quantity.String(),
		ExpirationDate: b.ExpirationDate,
		CreatedAt:      b.CreatedAt,
	}
}

// ToStockMovementResponses converts movements to StockMovementResponse DTOs.
func ToStockMovementResponses(movements []domain.StockMovement) []StockMovementResponse {
	res := make([]StockMovementResponse, len(movements))
	for i, m := range movements {
		res[i] = StockMovementResponse{
			MovementID: m.MovementID,
			ProductID:  m.ProductID,
			Type:       m.Type,
			Quantity:   m.Quantity.String(),
			Reason:     m.Reason,
			BatchID:    m.BatchID,
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt,
		}
	}
	return res
}
