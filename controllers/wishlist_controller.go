package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

type WishlistController struct {
	wishlistService services.WishlistService
}

func NewWishlistController(wishlistService services.WishlistService) *WishlistController {
	return &WishlistController{wishlistService: wishlistService}
}

func (wc *WishlistController) GetWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, svcErr := wc.wishlistService.List(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (wc *WishlistController) AddToWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.AddWishlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	items, svcErr := wc.wishlistService.Add(ctx.Request.Context(), userID, req.ProductID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"items": items})
}

func (wc *WishlistController) RemoveFromWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	productID, ok := uuidParam(ctx, "product_id", "product")
	if !ok {
		return
	}
	items, svcErr := wc.wishlistService.Remove(ctx.Request.Context(), userID, productID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": items})
}
