package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Description string     `gorm:"not null" json:"description"`
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"not null;default:0" json:"stock"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	SupplierID  *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	Stock       int        `json:"stock" binding:"gte=0"`
	CategoryID  uuid.UUID  `json:"category_id" binding:"required"`
	SupplierID  *uuid.UUID `json:"supplier_id"`
}

// StockShortfall describes one line item that cannot be satisfied by the
// current stock level. Returned in bulk so the caller can fix the whole
// cart in one pass.
type StockShortfall struct {
	ProductName string `json:"product"`
	Available   int    `json:"available_stock"`
	Requested   int    `json:"requested_quantity"`
}
