package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrAlreadyInWishlist = errors.New("Already in wishlist!")

type WishlistService interface {
	Add(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *ServiceError)
	Remove(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *ServiceError)
	List(ctx context.Context, userID string) ([]models.WishlistEntry, *ServiceError)
}

type wishlistServiceImpl struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository, logger *zap.Logger) WishlistService {
	return &wishlistServiceImpl{wishlistRepo: wishlistRepo, productRepo: productRepo, logger: logger}
}

func (s *wishlistServiceImpl) Add(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *ServiceError) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to load product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}

	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		s.logger.Error("Failed to check wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}
	if exists {
		return nil, fromSentinel(http.StatusConflict, ErrAlreadyInWishlist)
	}

	if err := s.wishlistRepo.Add(ctx, &models.WishlistEntry{UserID: userID, ProductID: productID}); err != nil {
		s.logger.Error("Failed to add to wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}
	return s.List(ctx, userID)
}

func (s *wishlistServiceImpl) Remove(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *ServiceError) {
	if err := s.wishlistRepo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Item not in wishlist")
		}
		s.logger.Error("Failed to remove from wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to remove from wishlist")
	}
	return s.List(ctx, userID)
}

func (s *wishlistServiceImpl) List(ctx context.Context, userID string) ([]models.WishlistEntry, *ServiceError) {
	entries, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to load wishlist")
	}
	if entries == nil {
		entries = []models.WishlistEntry{}
	}
	return entries, nil
}
