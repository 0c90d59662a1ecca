package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistEntry struct {
	UserID    string    `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (WishlistEntry) TableName() string { return "wishlist" }

type AddWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}
