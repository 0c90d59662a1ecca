package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/controllers"
)

// Handlers groups the controllers mounted on the router.
type Handlers struct {
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Products *controllers.ProductController
	Wishlist *controllers.WishlistController
	Payments *controllers.PaymentController
}

// Guards are the auth and throttling middlewares routes depend on.
type Guards struct {
	Auth         gin.HandlerFunc
	Admin        gin.HandlerFunc
	ConfirmLimit gin.HandlerFunc
}

// RegisterRoutes sets up every storefront route.
func RegisterRoutes(r *gin.Engine, h Handlers, g Guards) {
	// Public catalog
	r.GET("/products", h.Products.GetProducts)
	r.GET("/products/:id", h.Products.GetProductByID)

	// Stripe calls this directly; the signature is the auth
	r.POST("/payments/stripe/webhook", h.Payments.StripeWebhook)

	user := r.Group("/")
	user.Use(g.Auth)

	cart := user.Group("/cart")
	cart.GET("", h.Cart.GetCart)
	cart.DELETE("", h.Cart.ClearCart)
	cart.POST("/items", h.Cart.AddItem)
	cart.PATCH("/items/:id/quantity", h.Cart.AdjustQuantity)
	cart.PATCH("/items/:id/size", h.Cart.SetSize)
	cart.DELETE("/items/:id", h.Cart.RemoveItem)

	wishlist := user.Group("/wishlist")
	wishlist.GET("", h.Wishlist.GetWishlist)
	wishlist.POST("", h.Wishlist.AddToWishlist)
	wishlist.DELETE("/:product_id", h.Wishlist.RemoveFromWishlist)

	checkout := user.Group("/checkout")
	checkout.POST("", h.Checkout.StartCheckout)
	checkout.GET("/:id", h.Checkout.GetSession)
	checkout.PUT("/:id/shipping", h.Checkout.SubmitShipping)
	checkout.PUT("/:id/payment", h.Checkout.SelectPayment)
	checkout.POST("/:id/payment/intent", h.Checkout.TriggerPaymentIntent)
	checkout.POST("/:id/confirm", g.ConfirmLimit, h.Checkout.Confirm)

	orders := user.Group("/orders")
	orders.GET("", h.Orders.GetOrders)
	orders.GET("/:id", h.Orders.GetOrderByID)
	orders.PUT("/:id/rating", h.Orders.RateOrder)

	admin := user.Group("/admin")
	admin.Use(g.Admin)
	admin.GET("/orders", h.Orders.GetAllOrders)
	admin.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)
	admin.POST("/products", h.Products.CreateProduct)
	admin.GET("/products/presign", h.Products.GetPresignUpload)
	admin.PUT("/products/:id", h.Products.UpdateProduct)
	admin.DELETE("/products/:id", h.Products.DeleteProduct)
	admin.PUT("/products/:id/sizes", h.Products.UpsertSizes)
}
