package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

type CheckoutController struct {
	checkoutService services.CheckoutService
}

func NewCheckoutController(checkoutService services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// StartCheckout handles POST /checkout. The body picks the cart or a single
// buy-now product.
func (cc *CheckoutController) StartCheckout(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.StartCheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.checkoutService.StartCheckout(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, view)
}

func (cc *CheckoutController) GetSession(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "checkout")
	if !ok {
		return
	}
	view, svcErr := cc.checkoutService.GetSession(ctx.Request.Context(), userID, id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (cc *CheckoutController) SubmitShipping(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "checkout")
	if !ok {
		return
	}
	var form models.ShippingDetails
	if err := ctx.ShouldBindJSON(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.checkoutService.SubmitShipping(ctx.Request.Context(), userID, id, form)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (cc *CheckoutController) SelectPayment(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "checkout")
	if !ok {
		return
	}
	var req models.SelectPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	view, svcErr := cc.checkoutService.SelectPayment(ctx.Request.Context(), userID, id, req.Method)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// TriggerPaymentIntent handles POST /checkout/:id/payment/intent. For UPI the
// response carries the deep link; for card, the Stripe client secret.
func (cc *CheckoutController) TriggerPaymentIntent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "checkout")
	if !ok {
		return
	}
	view, svcErr := cc.checkoutService.TriggerPaymentIntent(ctx.Request.Context(), userID, id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (cc *CheckoutController) Confirm(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "checkout")
	if !ok {
		return
	}
	result, svcErr := cc.checkoutService.Confirm(ctx.Request.Context(), userID, id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}
