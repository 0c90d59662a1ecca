package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/services"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// PaymentController receives Stripe webhooks and hands verified events to
// the order service.
type PaymentController struct {
	gateway      services.PaymentGateway
	orderService services.OrderService
	logger       *zap.Logger
}

func NewPaymentController(gateway services.PaymentGateway, orderService services.OrderService, logger *zap.Logger) *PaymentController {
	return &PaymentController{gateway: gateway, orderService: orderService, logger: logger}
}

func (pc *PaymentController) StripeWebhook(ctx *gin.Context) {
	if pc.gateway == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
	if err != nil {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	event, err := pc.gateway.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		pc.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	pc.logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	if svcErr := pc.orderService.HandlePaymentEvent(ctx.Request.Context(), event); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}
