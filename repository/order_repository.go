package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"gorm.io/gorm"
)

// OrderRepository defines data-access operations for orders.
type OrderRepository interface {
	PlaceOrders(ctx context.Context, orders []models.Order, userID string, ordered []models.OrderedCartLine) error
	FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]models.Order, error)
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error)
	FindByIDForUser(ctx context.Context, userID string, id uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateStatusByPaymentReference(ctx context.Context, reference, status string) ([]models.Order, error)
	UpdateRating(ctx context.Context, userID string, id uuid.UUID, rating int) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// PlaceOrders inserts every order row and removes the ordered cart lines in
// one transaction. Either all rows land or none do. A cart line edited
// since checkout started no longer matches and is left in the cart.
func (r *GormOrderRepository) PlaceOrders(ctx context.Context, orders []models.Order, userID string, ordered []models.OrderedCartLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}
		for _, l := range ordered {
			if err := tx.Where("user_id = ? AND id = ? AND size = ? AND quantity = ?", userID, l.ID, l.Size, l.Quantity).
				Delete(&models.CartLine{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, userID string, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll lists every order, newest first. An empty status means no filter.
func (r *GormOrderRepository) FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("order_status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus overwrites the status regardless of its current value.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("order_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatusByPaymentReference settles every row paid through one
// external payment and returns the rows as they were before the update.
func (r *GormOrderRepository) UpdateStatusByPaymentReference(ctx context.Context, reference, status string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_reference = ?", reference).Find(&orders).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}
		return tx.Model(&models.Order{}).
			Where("payment_reference = ?", reference).
			Update("order_status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateRating(ctx context.Context, userID string, id uuid.UUID, rating int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
