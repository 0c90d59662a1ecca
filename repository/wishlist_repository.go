package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Exists(ctx context.Context, userID string, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, entry *models.WishlistEntry) error
	FindByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error)
	Delete(ctx context.Context, userID string, productID uuid.UUID) error
}

type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) WishlistRepository {
	return &GormWishlistRepository{db: db}
}

func (r *GormWishlistRepository) Exists(ctx context.Context, userID string, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistEntry{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormWishlistRepository) Add(ctx context.Context, entry *models.WishlistEntry) error {
	return r.db.WithContext(ctx).Omit("Product").Create(entry).Error
}

func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormWishlistRepository) Delete(ctx context.Context, userID string, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
