package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSizeRequired  = errors.New("Please select a size")
	ErrAlreadyInCart = errors.New("Already in cart!")
	ErrOutOfStock    = errors.New("Out of stock")
)

// CartService defines the cart operations. Every call returns the cart as
// it stands after the operation, with fresh totals.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError)
	AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartView, *ServiceError)
	AdjustQuantity(ctx context.Context, userID string, lineID uuid.UUID, delta int) (*models.CartView, *ServiceError)
	SetSize(ctx context.Context, userID string, lineID uuid.UUID, size string) (*models.CartView, *ServiceError)
	RemoveLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartView, *ServiceError)
	ClearCart(ctx context.Context, userID string) (*models.CartView, *ServiceError)
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{cartRepo: cartRepo, productRepo: productRepo, logger: logger}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError) {
	lines, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	items := toLineItems(lines)
	return &models.CartView{Items: items, Summary: Summarize(items)}, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartView, *ServiceError) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, badRequest("Quantity must be at least 1")
	}

	product, svcErr := s.loadProduct(ctx, req.ProductID)
	if svcErr != nil {
		return nil, svcErr
	}

	size := req.Size
	if product.HasSizes() {
		if svcErr := checkSizeStock(product, size, qty); svcErr != nil {
			return nil, svcErr
		}
	} else {
		size = ""
	}

	existing, err := s.cartRepo.FindByProductSize(ctx, userID, product.ID, size)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check cart for duplicate", zap.Error(err))
		return nil, internal("Failed to add item to cart")
	}
	if existing != nil {
		return nil, fromSentinel(http.StatusConflict, ErrAlreadyInCart)
	}

	line := &models.CartLine{UserID: userID, ProductID: product.ID, Size: size, Quantity: qty}
	if err := s.cartRepo.Create(ctx, line); err != nil {
		s.logger.Error("Failed to add cart line", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to add item to cart")
	}

	s.logger.Info("Cart line added",
		zap.String("user_id", userID),
		zap.String("product_id", product.ID.String()),
		zap.String("size", size),
	)
	return s.GetCart(ctx, userID)
}

// AdjustQuantity applies delta to a line. A result of zero or less removes
// the line instead of storing it.
func (s *cartServiceImpl) AdjustQuantity(ctx context.Context, userID string, lineID uuid.UUID, delta int) (*models.CartView, *ServiceError) {
	if delta == 0 {
		return nil, badRequest("Delta must not be zero")
	}

	line, svcErr := s.loadLine(ctx, userID, lineID)
	if svcErr != nil {
		return nil, svcErr
	}

	newQty := line.Quantity + delta
	if newQty <= 0 {
		return s.RemoveLine(ctx, userID, lineID)
	}

	if delta > 0 && line.Product != nil && line.Product.HasSizes() {
		if svcErr := checkSizeStock(line.Product, line.Size, newQty); svcErr != nil {
			return nil, svcErr
		}
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, lineID, newQty); err != nil {
		return nil, s.writeError("update quantity", lineID, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) SetSize(ctx context.Context, userID string, lineID uuid.UUID, size string) (*models.CartView, *ServiceError) {
	line, svcErr := s.loadLine(ctx, userID, lineID)
	if svcErr != nil {
		return nil, svcErr
	}
	if line.Product == nil {
		return nil, notFound("Product not found")
	}
	if line.Size == size {
		return s.GetCart(ctx, userID)
	}
	if svcErr := checkSizeStock(line.Product, size, line.Quantity); svcErr != nil {
		return nil, svcErr
	}

	other, err := s.cartRepo.FindByProductSize(ctx, userID, line.ProductID, size)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check cart for duplicate", zap.Error(err))
		return nil, internal("Failed to update size")
	}
	if other != nil {
		return nil, fromSentinel(http.StatusConflict, ErrAlreadyInCart)
	}

	if err := s.cartRepo.UpdateSize(ctx, userID, lineID, size); err != nil {
		return nil, s.writeError("update size", lineID, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) RemoveLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartView, *ServiceError) {
	if err := s.cartRepo.DeleteLine(ctx, userID, lineID); err != nil {
		return nil, s.writeError("remove line", lineID, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) (*models.CartView, *ServiceError) {
	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to clear cart")
	}
	return &models.CartView{Items: []models.LineItem{}, Summary: Summarize(nil)}, nil
}

func (s *cartServiceImpl) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, internal("Failed to load product")
	}
	return product, nil
}

func (s *cartServiceImpl) loadLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartLine, *ServiceError) {
	line, err := s.cartRepo.FindLine(ctx, userID, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Cart item not found")
	}
	if err != nil {
		s.logger.Error("Failed to load cart line", zap.String("line_id", lineID.String()), zap.Error(err))
		return nil, internal("Failed to load cart item")
	}
	return line, nil
}

func (s *cartServiceImpl) writeError(op string, lineID uuid.UUID, err error) *ServiceError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Cart item not found")
	}
	s.logger.Error("Cart write failed", zap.String("op", op), zap.String("line_id", lineID.String()), zap.Error(err))
	return internal("Failed to " + op)
}

// checkSizeStock enforces that a sized product is bought in an offered
// size with enough stock for qty units.
func checkSizeStock(p *models.Product, size string, qty int) *ServiceError {
	if size == "" {
		return fromSentinel(http.StatusBadRequest, ErrSizeRequired)
	}
	entry := p.FindSize(size)
	if entry == nil {
		return badRequest(fmt.Sprintf("Size %s is not available for this product", size))
	}
	if entry.Stock <= 0 {
		return fromSentinel(http.StatusConflict, ErrOutOfStock)
	}
	if qty > entry.Stock {
		return conflict(fmt.Sprintf("Only %d left in stock for size %s", entry.Stock, size))
	}
	return nil
}
