package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Staff may overwrite any status with any other.
const (
	OrderStatusPending = "Pending"
	OrderStatusSuccess = "Success"
	OrderStatusFailed  = "Failed"
)

// IsValidOrderStatus reports whether s is one of the three order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusSuccess, OrderStatusFailed:
		return true
	}
	return false
}

// Order is one purchased line. A checkout writes one row per line, all
// sharing the same CheckoutID.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CheckoutID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"checkout_id"`
	UserID           string          `gorm:"type:varchar(128);not null;index" json:"user_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName      string          `gorm:"type:varchar(255)" json:"product_name"`
	ProductSize      string          `gorm:"type:varchar(20)" json:"product_size"`
	ProductImage     string          `gorm:"type:text" json:"product_image"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	ShippingName     string          `gorm:"type:varchar(255)" json:"shipping_name"`
	ShippingAddress  string          `gorm:"type:text" json:"shipping_address"`
	Pincode          string          `gorm:"type:varchar(6)" json:"pincode"`
	PhoneNumber      string          `gorm:"type:varchar(10)" json:"phone_number"`
	Email            string          `gorm:"type:varchar(255)" json:"email"`
	PaymentMode      string          `gorm:"type:varchar(20);not null" json:"payment_mode"`
	PaymentReference string          `gorm:"type:varchar(255);index" json:"payment_reference,omitempty"`
	OrderStatus      string          `gorm:"type:varchar(20);not null;default:'Pending'" json:"order_status"`
	Rating           *int            `json:"rating,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

type OrderStatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type RateOrderRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}
