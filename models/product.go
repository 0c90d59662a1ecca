package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. DiscountedPrice is optional; when set and
// positive it is the price the shopper pays.
type Product struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	Category        string           `gorm:"type:varchar(100);index" json:"category"`
	Style           string           `gorm:"type:varchar(100);index" json:"style"`
	Price           decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountedPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discounted_price,omitempty"`
	ImageURL        string           `gorm:"type:text" json:"image_url"`
	Description     string           `gorm:"type:text" json:"description"`
	Sizes           []ProductSize    `gorm:"foreignKey:ProductID" json:"sizes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ProductSize holds per-size stock.
type ProductSize struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Size      string    `gorm:"type:varchar(20);not null" json:"size"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
}

func (Product) TableName() string     { return "products" }
func (ProductSize) TableName() string { return "product_sizes" }

// FindSize returns the size entry matching size, or nil.
func (p *Product) FindSize(size string) *ProductSize {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}

// HasSizes reports whether the product is sold in sizes at all.
func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

// ProductFilter narrows catalog listings. Query matches product names,
// case-insensitive substring.
type ProductFilter struct {
	Category string
	Style    string
	Query    string
}

type CreateProductRequest struct {
	Name            string           `json:"name" validate:"required,min=2"`
	Category        string           `json:"category" validate:"required"`
	Style           string           `json:"style"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	ImageURL        string           `json:"image_url" validate:"omitempty,url"`
	Description     string           `json:"description"`
	Sizes           []SizeStock      `json:"sizes" validate:"dive"`
}

type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=2"`
	Category        *string          `json:"category"`
	Style           *string          `json:"style"`
	Price           *decimal.Decimal `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	ImageURL        *string          `json:"image_url" validate:"omitempty,url"`
	Description     *string          `json:"description"`
}

// SizeStock is the admin payload for one size row.
type SizeStock struct {
	Size  string `json:"size" validate:"required,max=20"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type UpsertSizesRequest struct {
	Sizes []SizeStock `json:"sizes" validate:"required,min=1,dive"`
}
