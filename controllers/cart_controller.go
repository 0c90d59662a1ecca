package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	view, svcErr := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// AddItem handles POST /cart/items.
func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.cartService.AddItem(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, view)
}

// AdjustQuantity handles PATCH /cart/items/:id/quantity.
func (cc *CartController) AdjustQuantity(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	lineID, ok := uuidParam(ctx, "id", "cart item")
	if !ok {
		return
	}
	var req models.AdjustQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.cartService.AdjustQuantity(ctx.Request.Context(), userID, lineID, req.Delta)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// SetSize handles PATCH /cart/items/:id/size.
func (cc *CartController) SetSize(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	lineID, ok := uuidParam(ctx, "id", "cart item")
	if !ok {
		return
	}
	var req models.SetSizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.cartService.SetSize(ctx.Request.Context(), userID, lineID, req.Size)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// RemoveItem handles DELETE /cart/items/:id.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	lineID, ok := uuidParam(ctx, "id", "cart item")
	if !ok {
		return
	}
	view, svcErr := cc.cartService.RemoveLine(ctx.Request.Context(), userID, lineID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	view, svcErr := cc.cartService.ClearCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}
