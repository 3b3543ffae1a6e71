package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. The happy path is linear; "cancelled" is reachable from
// any non-terminal state.
const (
	StatusPending       = "pending"
	StatusConfirmed     = "confirmed"
	StatusInPreparation = "in_preparation"
	StatusInTransit     = "in_transit"
	StatusDelivered     = "delivered"
	StatusCancelled     = "cancelled"
)

type Order struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	TrackingCode      string              `gorm:"type:varchar(10);uniqueIndex;not null" json:"tracking_code"`
	Status            string              `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Total             float64             `gorm:"not null" json:"total"`
	DeliveryAddress   string              `gorm:"not null" json:"delivery_address"`
	ContactPhone      string              `gorm:"not null" json:"contact_phone"`
	NotificationEmail string              `json:"notification_email,omitempty"`
	Notes             string              `gorm:"size:500" json:"notes,omitempty"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	History           []OrderStatusChange `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"history"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt      `gorm:"index" json:"-"`
}

type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Subtotal    float64   `gorm:"not null" json:"subtotal"`
}

// OrderStatusChange rows are append-only; an order's history is never
// rewritten.
type OrderStatusChange struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`
	Notes         string    `gorm:"size:500" json:"notes,omitempty"`
	ChangedBy     uuid.UUID `gorm:"type:uuid;not null" json:"changed_by"`
	ChangedByRole string    `gorm:"type:varchar(20)" json:"changed_by_role,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type CheckoutRequest struct {
	DeliveryAddress   string `json:"delivery_address" binding:"required"`
	ContactPhone      string `json:"contact_phone" binding:"required,phone"`
	NotificationEmail string `json:"notification_email" binding:"required"`
	Notes             string `json:"notes" binding:"max=500"`
}

type DirectOrderItem struct {
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type DirectOrderRequest struct {
	Items           []DirectOrderItem `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress string            `json:"delivery_address" binding:"required"`
	ContactPhone    string            `json:"contact_phone" binding:"required,phone"`
	Notes           string            `json:"notes" binding:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	Notes             string `json:"notes" binding:"max=500"`
	NotificationEmail string `json:"notification_email"`
}

// TrackingView is the redacted order projection served on the public
// tracking endpoint: no actor identities, no contact details.
type TrackingView struct {
	TrackingCode string                 `json:"tracking_code"`
	Status       string                 `json:"status"`
	Total        float64                `json:"total"`
	CreatedAt    time.Time              `json:"created_at"`
	Items        []TrackingItem         `json:"items"`
	History      []TrackingHistoryEntry `json:"history"`
}

type TrackingItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type TrackingHistoryEntry struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}
