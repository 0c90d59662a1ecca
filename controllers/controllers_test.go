package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"github.com/tivrax/storefront/controllers"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Helpers ---

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(r *gin.Engine, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleView() *models.CartView {
	items := []models.LineItem{
		{ProductID: uuid.New(), Name: "Shirt", Quantity: 2, Price: decimal.NewFromInt(500)},
	}
	return &models.CartView{Items: items, Summary: services.Summarize(items)}
}

// --- Cart ---

func cartRouter(svc services.CartService, userID string) *gin.Engine {
	r := gin.New()
	if userID != "" {
		r.Use(withUser(userID))
	}
	cc := controllers.NewCartController(svc)
	r.GET("/cart", cc.GetCart)
	r.POST("/cart/items", cc.AddItem)
	r.PATCH("/cart/items/:id/quantity", cc.AdjustQuantity)
	r.PATCH("/cart/items/:id/size", cc.SetSize)
	r.DELETE("/cart/items/:id", cc.RemoveItem)
	r.DELETE("/cart", cc.ClearCart)
	return r
}

func TestCart_AddItem_Created(t *testing.T) {
	productID := uuid.New()
	svc := &mockCartService{
		addFn: func(_ context.Context, userID string, req *models.AddCartItemRequest) (*models.CartView, *services.ServiceError) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, productID, req.ProductID)
			assert.Equal(t, "M", req.Size)
			return sampleView(), nil
		},
	}
	w := serve(cartRouter(svc, "user-1"), http.MethodPost, "/cart/items",
		jsonBody(t, gin.H{"product_id": productID, "size": "M", "quantity": 2}))

	assert.Equal(t, http.StatusCreated, w.Code)
	summary := decode(t, w)["summary"].(map[string]interface{})
	assert.Equal(t, "1000", summary["total_amount"])
}

func TestCart_AddItem_Conflict(t *testing.T) {
	svc := &mockCartService{
		addFn: func(context.Context, string, *models.AddCartItemRequest) (*models.CartView, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusConflict, Message: "Already in cart!"}
		},
	}
	w := serve(cartRouter(svc, "user-1"), http.MethodPost, "/cart/items", jsonBody(t, gin.H{"product_id": uuid.New()}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already in cart!", decode(t, w)["error"])
}

func TestCart_Unauthorized(t *testing.T) {
	w := serve(cartRouter(&mockCartService{}, ""), http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCart_AdjustQuantity(t *testing.T) {
	lineID := uuid.New()
	svc := &mockCartService{
		adjustFn: func(_ context.Context, _ string, id uuid.UUID, delta int) (*models.CartView, *services.ServiceError) {
			assert.Equal(t, lineID, id)
			assert.Equal(t, -1, delta)
			return &models.CartView{Items: []models.LineItem{}}, nil
		},
	}
	r := cartRouter(svc, "user-1")

	w := serve(r, http.MethodPatch, "/cart/items/"+lineID.String()+"/quantity", jsonBody(t, gin.H{"delta": -1}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPatch, "/cart/items/not-a-uuid/quantity", jsonBody(t, gin.H{"delta": 1}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPatch, "/cart/items/"+lineID.String()+"/quantity", jsonBody(t, gin.H{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Checkout ---

func checkoutRouter(svc services.CheckoutService) *gin.Engine {
	r := gin.New()
	r.Use(withUser("user-1"))
	cc := controllers.NewCheckoutController(svc)
	r.POST("/checkout", cc.StartCheckout)
	r.GET("/checkout/:id", cc.GetSession)
	r.PUT("/checkout/:id/shipping", cc.SubmitShipping)
	r.PUT("/checkout/:id/payment", cc.SelectPayment)
	r.POST("/checkout/:id/payment/intent", cc.TriggerPaymentIntent)
	r.POST("/checkout/:id/confirm", cc.Confirm)
	return r
}

func TestCheckout_StartRejectsUnknownSource(t *testing.T) {
	w := serve(checkoutRouter(&mockCheckoutService{}), http.MethodPost, "/checkout", jsonBody(t, gin.H{"source": "wishlist"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_ShippingFieldErrors(t *testing.T) {
	svc := &mockCheckoutService{
		shippingFn: func(_ context.Context, _ string, _ uuid.UUID, form models.ShippingDetails) (*services.CheckoutView, *services.ServiceError) {
			assert.Equal(t, "12345", form.Phone)
			return nil, &services.ServiceError{
				StatusCode: http.StatusUnprocessableEntity,
				Message:    "Please fix the highlighted fields",
				Fields:     map[string]string{"phone": "Phone number must be 10 digits"},
			}
		},
	}
	w := serve(checkoutRouter(svc), http.MethodPut, "/checkout/"+uuid.NewString()+"/shipping",
		jsonBody(t, gin.H{"name": "Asha", "phone": "12345", "email": "a@b.in", "address": "12 MG Road, Pune", "pincode": "411001"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "Phone number must be 10 digits", fields["phone"])
}

func TestCheckout_ConfirmWithoutPaymentMethod(t *testing.T) {
	svc := &mockCheckoutService{
		confirmFn: func(context.Context, string, uuid.UUID) (*services.ConfirmResult, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: models.ErrPaymentMethodRequired.Error()}
		},
	}
	w := serve(checkoutRouter(svc), http.MethodPost, "/checkout/"+uuid.NewString()+"/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrPaymentMethodRequired.Error(), decode(t, w)["error"])
}

func TestCheckout_ConfirmCreated(t *testing.T) {
	id := uuid.New()
	svc := &mockCheckoutService{
		confirmFn: func(_ context.Context, userID string, sid uuid.UUID) (*services.ConfirmResult, *services.ServiceError) {
			assert.Equal(t, id, sid)
			return &services.ConfirmResult{
				Orders:               []models.Order{{ID: uuid.New(), OrderStatus: models.OrderStatusPending}},
				RedirectTo:           "/orders",
				RedirectAfterSeconds: 3,
			}, nil
		},
	}
	w := serve(checkoutRouter(svc), http.MethodPost, "/checkout/"+id.String()+"/confirm", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/orders", body["redirect_to"])
	assert.Equal(t, float64(3), body["redirect_after_seconds"])
}

func TestCheckout_SelectPaymentPassesMethod(t *testing.T) {
	svc := &mockCheckoutService{
		paymentFn: func(_ context.Context, _ string, _ uuid.UUID, method string) (*services.CheckoutView, *services.ServiceError) {
			assert.Equal(t, "gpay", method)
			return &services.CheckoutView{}, nil
		},
	}
	w := serve(checkoutRouter(svc), http.MethodPut, "/checkout/"+uuid.NewString()+"/payment", jsonBody(t, gin.H{"method": "gpay"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Orders ---

func orderRouter(svc services.OrderService) *gin.Engine {
	r := gin.New()
	r.Use(withUser("user-1"))
	oc := controllers.NewOrderController(svc)
	r.GET("/orders", oc.GetOrders)
	r.GET("/orders/:id", oc.GetOrderByID)
	r.PUT("/orders/:id/rating", oc.RateOrder)
	r.GET("/admin/orders", oc.GetAllOrders)
	r.PUT("/admin/orders/:id/status", oc.UpdateOrderStatus)
	return r
}

func TestOrders_PaginationClamped(t *testing.T) {
	svc := &mockOrderService{
		listFn: func(_ context.Context, _ string, page, limit int) (*services.OrderResponse, *services.ServiceError) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 100, limit)
			return &services.OrderResponse{Orders: []models.Order{}}, nil
		},
	}
	w := serve(orderRouter(svc), http.MethodGet, "/orders?page=-3&limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrders_AdminSetStatus(t *testing.T) {
	id := uuid.New()
	svc := &mockOrderService{
		statusFn: func(_ context.Context, oid uuid.UUID, status string) (*models.Order, *services.ServiceError) {
			assert.Equal(t, id, oid)
			return &models.Order{ID: oid, OrderStatus: status}, nil
		},
	}
	w := serve(orderRouter(svc), http.MethodPut, "/admin/orders/"+id.String()+"/status", jsonBody(t, gin.H{"status": "Failed"}))
	assert.Equal(t, http.StatusOK, w.Code)
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "Failed", order["order_status"])
}

func TestOrders_AdminListPassesStatus(t *testing.T) {
	svc := &mockOrderService{
		listAllFn: func(_ context.Context, status string, page, limit int) (*services.OrderResponse, *services.ServiceError) {
			assert.Equal(t, "Pending", status)
			assert.Equal(t, 2, page)
			return &services.OrderResponse{Orders: []models.Order{}}, nil
		},
	}
	w := serve(orderRouter(svc), http.MethodGet, "/admin/orders?status=Pending&page=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrders_RateOutOfRange(t *testing.T) {
	w := serve(orderRouter(&mockOrderService{}), http.MethodPut, "/orders/"+uuid.NewString()+"/rating", jsonBody(t, gin.H{"rating": 9}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_GetNotFound(t *testing.T) {
	svc := &mockOrderService{
		getFn: func(context.Context, string, uuid.UUID) (*models.Order, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		},
	}
	w := serve(orderRouter(svc), http.MethodGet, "/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Products ---

func TestProducts_ListFilters(t *testing.T) {
	svc := &mockProductService{
		listFn: func(_ context.Context, f models.ProductFilter, page, limit int) (*services.ProductListResponse, *services.ServiceError) {
			assert.Equal(t, "tees", f.Category)
			assert.Equal(t, "oversized", f.Style)
			assert.Equal(t, "linen shirt", f.Query)
			assert.Equal(t, 10, limit)
			return &services.ProductListResponse{Products: []models.Product{}}, nil
		},
	}
	r := gin.New()
	pc := controllers.NewProductController(svc)
	r.GET("/products", pc.GetProducts)

	w := serve(r, http.MethodGet, "/products?category=tees&style=oversized&q=+linen%20shirt+", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts_PresignRequiresContentType(t *testing.T) {
	r := gin.New()
	pc := controllers.NewProductController(&mockProductService{})
	r.GET("/admin/products/presign", pc.GetPresignUpload)

	w := serve(r, http.MethodGet, "/admin/products/presign?filename=a.png", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Wishlist ---

func TestWishlist_AddDuplicate(t *testing.T) {
	svc := &mockWishlistService{
		addFn: func(context.Context, string, uuid.UUID) ([]models.WishlistEntry, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusConflict, Message: "Already in wishlist!"}
		},
	}
	r := gin.New()
	r.Use(withUser("user-1"))
	wc := controllers.NewWishlistController(svc)
	r.POST("/wishlist", wc.AddToWishlist)

	w := serve(r, http.MethodPost, "/wishlist", jsonBody(t, gin.H{"product_id": uuid.New()}))
	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Stripe webhook ---

func TestStripeWebhook(t *testing.T) {
	var got stripe.Event
	orders := &mockOrderService{
		eventFn: func(_ context.Context, e stripe.Event) *services.ServiceError {
			got = e
			return nil
		},
	}
	gateway := services.NewStripeGateway("sk_test_dummy", "whsec_test")
	r := gin.New()
	pc := controllers.NewPaymentController(gateway, orders, zap.NewNop())
	r.POST("/payments/stripe/webhook", pc.StripeWebhook)

	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`, stripe.APIVersion))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test", Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodPost, "/payments/stripe/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "evt_1", got.ID)

	req = httptest.NewRequest(http.MethodPost, "/payments/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook_RedeliveryWhenOrdersMissing(t *testing.T) {
	orders := &mockOrderService{
		eventFn: func(_ context.Context, e stripe.Event) *services.ServiceError {
			return &services.ServiceError{StatusCode: http.StatusConflict, Message: "Orders for payment intent not placed yet"}
		},
	}
	gateway := services.NewStripeGateway("sk_test_dummy", "whsec_test")
	r := gin.New()
	pc := controllers.NewPaymentController(gateway, orders, zap.NewNop())
	r.POST("/payments/stripe/webhook", pc.StripeWebhook)

	payload := []byte(fmt.Sprintf(`{"id":"evt_2","object":"event","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":"pi_2"}}}`, stripe.APIVersion))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test", Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodPost, "/payments/stripe/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
