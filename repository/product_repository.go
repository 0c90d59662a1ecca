package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines data-access operations for the catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAll(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("size") }).
		First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Style != "" {
		query = query.Where("style = ?", filter.Style)
	}
	if filter.Query != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(filter.Query)+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Sizes").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Create inserts the product and any sizes attached to it.
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves product columns only; sizes go through UpsertSizes.
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductSize{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpsertSizes sets the stock for each given size, creating rows that do
// not exist yet. Sizes not listed are left untouched.
func (r *GormProductRepository) UpsertSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range sizes {
			res := tx.Model(&models.ProductSize{}).
				Where("product_id = ? AND size = ?", productID, s.Size).
				Update("stock", s.Stock)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}
			row := models.ProductSize{ProductID: productID, Size: s.Size, Stock: s.Stock}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike keeps LIKE wildcards in user input literal.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
