package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem carries a unit-price snapshot taken when the item was first
// added. Subtotal is derived (quantity × unit price) and recomputed by the
// repository on every save.
type CartItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Subtotal    float64   `json:"subtotal"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AddCartItemRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartQuantityRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type RemoveCartItemRequest struct {
	ProductName string `json:"product_name" binding:"required"`
}
