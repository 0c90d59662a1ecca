package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"gorm.io/gorm"
)

// CartRepository defines data-access operations for cart lines. Every
// lookup is scoped by user so one shopper can never touch another's lines.
type CartRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.CartLine, error)
	FindLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartLine, error)
	FindByProductSize(ctx context.Context, userID string, productID uuid.UUID, size string) (*models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) error
	UpdateSize(ctx context.Context, userID string, lineID uuid.UUID, size string) error
	DeleteLine(ctx context.Context, userID string, lineID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID string) error
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormCartRepository) FindLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).
		Preload("Product.Sizes").
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormCartRepository) FindByProductSize(ctx context.Context, userID string, productID uuid.UUID, size string) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormCartRepository) Create(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Omit("Product").Create(line).Error
}

func (r *GormCartRepository) UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) error {
	return r.updateColumn(ctx, userID, lineID, "quantity", quantity)
}

func (r *GormCartRepository) UpdateSize(ctx context.Context, userID string, lineID uuid.UUID, size string) error {
	return r.updateColumn(ctx, userID, lineID, "size", size)
}

func (r *GormCartRepository) updateColumn(ctx context.Context, userID string, lineID uuid.UUID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCartRepository) DeleteLine(ctx context.Context, userID string, lineID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCartRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
}
