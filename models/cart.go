package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (product, size) selection held for a user. Quantity is
// always at least 1; a line whose quantity would drop to 0 is deleted.
type CartLine struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Size      string    `gorm:"type:varchar(20)" json:"size"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartLine) TableName() string { return "cart" }

// OrderedCartLine is the cart line state a checkout was priced from. The
// line is only removed after ordering if it still has this size and quantity.
type OrderedCartLine struct {
	ID       uuid.UUID
	Size     string
	Quantity int
}

// LineItem is a priced line: a cart line joined with its product, or a
// snapshot of one taken when checkout starts.
type LineItem struct {
	CartLineID      *uuid.UUID       `json:"cart_line_id,omitempty"`
	ProductID       uuid.UUID        `json:"product_id"`
	Name            string           `json:"name"`
	ImageURL        string           `json:"image_url"`
	Size            string           `json:"size"`
	Quantity        int              `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
}

// UnitPrice is discounted price if present, else price.
func (l LineItem) UnitPrice() decimal.Decimal {
	if l.DiscountedPrice != nil && l.DiscountedPrice.IsPositive() {
		return *l.DiscountedPrice
	}
	return l.Price
}

func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSummary holds the derived totals of a set of lines.
type CartSummary struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// CartView is what every cart read and mutation returns.
type CartView struct {
	Items   []LineItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1"`
}

type AdjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type SetSizeRequest struct {
	Size string `json:"size" binding:"required"`
}
