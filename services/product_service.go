package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
	"github.com/tivrax/storefront/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultPresignExpiry = 15 * time.Minute

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type PresignResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn int               `json:"expires_in"`
}

// ProductService covers the public catalog and the admin product screens.
type ProductService interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, page, limit int) (*ProductListResponse, *ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError
	UpsertSizes(ctx context.Context, id uuid.UUID, req *models.UpsertSizesRequest) (*models.Product, *ServiceError)
	PresignImageUpload(ctx context.Context, filename, contentType string) (*PresignResponse, *ServiceError)
}

type productServiceImpl struct {
	repo      repository.ProductRepository
	cache     *ProductCache
	presigner aws_pkg.Presigner
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewProductService wires the catalog. cache and presigner may be nil.
func NewProductService(repo repository.ProductRepository, cache *ProductCache, presigner aws_pkg.Presigner, logger *zap.Logger) ProductService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return &productServiceImpl{repo: repo, cache: cache, presigner: presigner, validate: v, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter models.ProductFilter, page, limit int) (*ProductListResponse, *ServiceError) {
	if cached, ok := s.cache.GetList(ctx, filter, page, limit); ok {
		return cached, nil
	}

	products, total, err := s.repo.FindAll(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	if products == nil {
		products = []models.Product{}
	}
	resp := &ProductListResponse{Products: products, Meta: newMetaData(page, limit, total)}
	s.cache.SetListAsync(filter, page, limit, resp)
	return resp, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	if cached, ok := s.cache.GetProduct(ctx, id); ok {
		return cached, nil
	}
	p, serr := s.load(ctx, id)
	if serr != nil {
		return nil, serr
	}
	s.cache.SetProductAsync(p)
	return p, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if serr := s.check(req); serr != nil {
		return nil, serr
	}
	if !req.Price.IsPositive() {
		return nil, fieldError("price", "Price must be greater than 0")
	}
	if req.DiscountedPrice != nil && (req.DiscountedPrice.IsNegative() || req.DiscountedPrice.GreaterThan(req.Price)) {
		return nil, fieldError("discounted_price", "Discounted price must be between 0 and price")
	}

	p := &models.Product{
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		Style:           strings.TrimSpace(req.Style),
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
	}
	for _, ss := range req.Sizes {
		p.Sizes = append(p.Sizes, models.ProductSize{Size: ss.Size, Stock: ss.Stock})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", zap.String("name", p.Name), zap.Error(err))
		return nil, internal("Failed to create product")
	}
	s.cache.InvalidateProduct(ctx, p.ID)
	s.logger.Info("Product created", zap.String("product_id", p.ID.String()), zap.String("name", p.Name))
	return p, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	if serr := s.check(req); serr != nil {
		return nil, serr
	}
	p, serr := s.load(ctx, id)
	if serr != nil {
		return nil, serr
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Style != nil {
		p.Style = strings.TrimSpace(*req.Style)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fieldError("price", "Price must be greater than 0")
		}
		p.Price = *req.Price
	}
	if req.DiscountedPrice != nil {
		// zero clears the discount
		if req.DiscountedPrice.IsZero() {
			p.DiscountedPrice = nil
		} else {
			p.DiscountedPrice = req.DiscountedPrice
		}
	}
	if p.DiscountedPrice != nil && (p.DiscountedPrice.IsNegative() || p.DiscountedPrice.GreaterThan(p.Price)) {
		return nil, fieldError("discounted_price", "Discounted price must be between 0 and price")
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, internal("Failed to update product")
	}
	s.cache.InvalidateProduct(ctx, id)
	return p, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Product not found")
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		return internal("Failed to delete product")
	}
	s.cache.InvalidateProduct(ctx, id)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *productServiceImpl) UpsertSizes(ctx context.Context, id uuid.UUID, req *models.UpsertSizesRequest) (*models.Product, *ServiceError) {
	if serr := s.check(req); serr != nil {
		return nil, serr
	}
	sizes := make([]models.ProductSize, 0, len(req.Sizes))
	for _, ss := range req.Sizes {
		sizes = append(sizes, models.ProductSize{ProductID: id, Size: strings.TrimSpace(ss.Size), Stock: ss.Stock})
	}
	if err := s.repo.UpsertSizes(ctx, id, sizes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to update stock", zap.String("product_id", id.String()), zap.Error(err))
		return nil, internal("Failed to update stock")
	}
	s.cache.InvalidateProduct(ctx, id)
	return s.load(ctx, id)
}

func (s *productServiceImpl) PresignImageUpload(ctx context.Context, filename, contentType string) (*PresignResponse, *ServiceError) {
	if s.presigner == nil {
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Image uploads are not configured"}
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, badRequest(fmt.Sprintf("Invalid content type %q", contentType))
	}
	if e := strings.ToLower(path.Ext(filename)); e != "" {
		ext = e
	}
	key := fmt.Sprintf("products/%s%s", uuid.NewString(), ext)

	url, headers, err := s.presigner.PresignPut(ctx, key, contentType, DefaultPresignExpiry)
	if err != nil {
		s.logger.Error("Failed to generate presigned upload", zap.String("key", key), zap.Error(err))
		return nil, internal("Failed to generate presigned upload")
	}
	return &PresignResponse{
		UploadURL: url,
		Method:    "PUT",
		Key:       key,
		PublicURL: s.presigner.PublicURL(key),
		Headers:   headers,
		ExpiresIn: int(DefaultPresignExpiry.Seconds()),
	}, nil
}

func (s *productServiceImpl) load(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, internal("Failed to fetch product")
	}
	return p, nil
}

func (s *productServiceImpl) check(req interface{}) *ServiceError {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid product payload", Fields: fields}
}

func fieldError(field, msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg, Fields: map[string]string{field: msg}}
}
