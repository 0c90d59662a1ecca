package controllers_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

// --- Mock CartService ---

type mockCartService struct {
	getFn    func(ctx context.Context, userID string) (*models.CartView, *services.ServiceError)
	addFn    func(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartView, *services.ServiceError)
	adjustFn func(ctx context.Context, userID string, lineID uuid.UUID, delta int) (*models.CartView, *services.ServiceError)
	sizeFn   func(ctx context.Context, userID string, lineID uuid.UUID, size string) (*models.CartView, *services.ServiceError)
	removeFn func(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartView, *services.ServiceError)
	clearFn  func(ctx context.Context, userID string) (*models.CartView, *services.ServiceError)
}

func (m *mockCartService) GetCart(ctx context.Context, userID string) (*models.CartView, *services.ServiceError) {
	return m.getFn(ctx, userID)
}
func (m *mockCartService) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartView, *services.ServiceError) {
	return m.addFn(ctx, userID, req)
}
func (m *mockCartService) AdjustQuantity(ctx context.Context, userID string, lineID uuid.UUID, delta int) (*models.CartView, *services.ServiceError) {
	return m.adjustFn(ctx, userID, lineID, delta)
}
func (m *mockCartService) SetSize(ctx context.Context, userID string, lineID uuid.UUID, size string) (*models.CartView, *services.ServiceError) {
	return m.sizeFn(ctx, userID, lineID, size)
}
func (m *mockCartService) RemoveLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartView, *services.ServiceError) {
	return m.removeFn(ctx, userID, lineID)
}
func (m *mockCartService) ClearCart(ctx context.Context, userID string) (*models.CartView, *services.ServiceError) {
	return m.clearFn(ctx, userID)
}

// --- Mock CheckoutService ---

type mockCheckoutService struct {
	startFn    func(ctx context.Context, userID string, req *models.StartCheckoutRequest) (*services.CheckoutView, *services.ServiceError)
	getFn      func(ctx context.Context, userID string, id uuid.UUID) (*services.CheckoutView, *services.ServiceError)
	shippingFn func(ctx context.Context, userID string, id uuid.UUID, form models.ShippingDetails) (*services.CheckoutView, *services.ServiceError)
	paymentFn  func(ctx context.Context, userID string, id uuid.UUID, method string) (*services.CheckoutView, *services.ServiceError)
	intentFn   func(ctx context.Context, userID string, id uuid.UUID) (*services.CheckoutView, *services.ServiceError)
	confirmFn  func(ctx context.Context, userID string, id uuid.UUID) (*services.ConfirmResult, *services.ServiceError)
}

func (m *mockCheckoutService) StartCheckout(ctx context.Context, userID string, req *models.StartCheckoutRequest) (*services.CheckoutView, *services.ServiceError) {
	return m.startFn(ctx, userID, req)
}
func (m *mockCheckoutService) GetSession(ctx context.Context, userID string, id uuid.UUID) (*services.CheckoutView, *services.ServiceError) {
	return m.getFn(ctx, userID, id)
}
func (m *mockCheckoutService) SubmitShipping(ctx context.Context, userID string, id uuid.UUID, form models.ShippingDetails) (*services.CheckoutView, *services.ServiceError) {
	return m.shippingFn(ctx, userID, id, form)
}
func (m *mockCheckoutService) SelectPayment(ctx context.Context, userID string, id uuid.UUID, method string) (*services.CheckoutView, *services.ServiceError) {
	return m.paymentFn(ctx, userID, id, method)
}
func (m *mockCheckoutService) TriggerPaymentIntent(ctx context.Context, userID string, id uuid.UUID) (*services.CheckoutView, *services.ServiceError) {
	return m.intentFn(ctx, userID, id)
}
func (m *mockCheckoutService) Confirm(ctx context.Context, userID string, id uuid.UUID) (*services.ConfirmResult, *services.ServiceError) {
	return m.confirmFn(ctx, userID, id)
}

// --- Mock OrderService ---

type mockOrderService struct {
	listFn    func(ctx context.Context, userID string, page, limit int) (*services.OrderResponse, *services.ServiceError)
	getFn     func(ctx context.Context, userID string, id uuid.UUID) (*models.Order, *services.ServiceError)
	rateFn    func(ctx context.Context, userID string, id uuid.UUID, rating int) (*models.Order, *services.ServiceError)
	listAllFn func(ctx context.Context, status string, page, limit int) (*services.OrderResponse, *services.ServiceError)
	statusFn  func(ctx context.Context, id uuid.UUID, status string) (*models.Order, *services.ServiceError)
	eventFn   func(ctx context.Context, event stripe.Event) *services.ServiceError
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID string, page, limit int) (*services.OrderResponse, *services.ServiceError) {
	return m.listFn(ctx, userID, page, limit)
}
func (m *mockOrderService) GetOrder(ctx context.Context, userID string, id uuid.UUID) (*models.Order, *services.ServiceError) {
	return m.getFn(ctx, userID, id)
}
func (m *mockOrderService) RateOrder(ctx context.Context, userID string, id uuid.UUID, rating int) (*models.Order, *services.ServiceError) {
	return m.rateFn(ctx, userID, id, rating)
}
func (m *mockOrderService) ListAllOrders(ctx context.Context, status string, page, limit int) (*services.OrderResponse, *services.ServiceError) {
	return m.listAllFn(ctx, status, page, limit)
}
func (m *mockOrderService) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, *services.ServiceError) {
	return m.statusFn(ctx, id, status)
}
func (m *mockOrderService) HandlePaymentEvent(ctx context.Context, event stripe.Event) *services.ServiceError {
	return m.eventFn(ctx, event)
}

// --- Mock ProductService ---

type mockProductService struct {
	listFn    func(ctx context.Context, f models.ProductFilter, page, limit int) (*services.ProductListResponse, *services.ServiceError)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Product, *services.ServiceError)
	createFn  func(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *services.ServiceError)
	updateFn  func(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *services.ServiceError)
	deleteFn  func(ctx context.Context, id uuid.UUID) *services.ServiceError
	sizesFn   func(ctx context.Context, id uuid.UUID, req *models.UpsertSizesRequest) (*models.Product, *services.ServiceError)
	presignFn func(ctx context.Context, filename, contentType string) (*services.PresignResponse, *services.ServiceError)
}

func (m *mockProductService) ListProducts(ctx context.Context, f models.ProductFilter, page, limit int) (*services.ProductListResponse, *services.ServiceError) {
	return m.listFn(ctx, f, page, limit)
}
func (m *mockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *services.ServiceError) {
	return m.createFn(ctx, req)
}
func (m *mockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *services.ServiceError) {
	return m.updateFn(ctx, id, req)
}
func (m *mockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) *services.ServiceError {
	return m.deleteFn(ctx, id)
}
func (m *mockProductService) UpsertSizes(ctx context.Context, id uuid.UUID, req *models.UpsertSizesRequest) (*models.Product, *services.ServiceError) {
	return m.sizesFn(ctx, id, req)
}
func (m *mockProductService) PresignImageUpload(ctx context.Context, filename, contentType string) (*services.PresignResponse, *services.ServiceError) {
	return m.presignFn(ctx, filename, contentType)
}

// --- Mock WishlistService ---

type mockWishlistService struct {
	addFn    func(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *services.ServiceError)
	removeFn func(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *services.ServiceError)
	listFn   func(ctx context.Context, userID string) ([]models.WishlistEntry, *services.ServiceError)
}

func (m *mockWishlistService) Add(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *services.ServiceError) {
	return m.addFn(ctx, userID, productID)
}
func (m *mockWishlistService) Remove(ctx context.Context, userID string, productID uuid.UUID) ([]models.WishlistEntry, *services.ServiceError) {
	return m.removeFn(ctx, userID, productID)
}
func (m *mockWishlistService) List(ctx context.Context, userID string) ([]models.WishlistEntry, *services.ServiceError) {
	return m.listFn(ctx, userID)
}
