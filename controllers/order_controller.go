package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// GetOrders returns paginated orders for the authenticated user, newest first.
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)
	result, svcErr := oc.orderService.ListUserOrders(ctx.Request.Context(), userID, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), userID, orderID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

func (oc *OrderController) RateOrder(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}
	var req models.RateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	order, svcErr := oc.orderService.RateOrder(ctx.Request.Context(), userID, orderID, req.Rating)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetAllOrders returns paginated orders for all users (admin only).
// ?status= narrows to one status.
func (oc *OrderController) GetAllOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	status := strings.TrimSpace(ctx.Query("status"))
	result, svcErr := oc.orderService.ListAllOrders(ctx.Request.Context(), status, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status.
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}
	var req models.OrderStatusUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	order, svcErr := oc.orderService.SetOrderStatus(ctx.Request.Context(), orderID, req.Status)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}
