package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"github.com/tivrax/storefront/events"
	"github.com/tivrax/storefront/models"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
	"github.com/tivrax/storefront/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// OrderService serves the shopper's order history, the admin dashboard and
// card payment reconciliation.
type OrderService interface {
	ListUserOrders(ctx context.Context, userID string, page, limit int) (*OrderResponse, *ServiceError)
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*models.Order, *ServiceError)
	RateOrder(ctx context.Context, userID string, orderID uuid.UUID, rating int) (*models.Order, *ServiceError)
	ListAllOrders(ctx context.Context, status string, page, limit int) (*OrderResponse, *ServiceError)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError)
	HandlePaymentEvent(ctx context.Context, event stripe.Event) *ServiceError
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	metrics   aws_pkg.MetricsRecorder
	logger    *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, publisher events.Publisher, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) OrderService {
	return &orderServiceImpl{orderRepo: orderRepo, publisher: publisher, metrics: metrics, logger: logger}
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID string, page, limit int) (*OrderResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderResponse{Orders: orders, Meta: newMetaData(page, limit, total)}, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByIDForUser(ctx, userID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to fetch order")
	}
	return order, nil
}

func (s *orderServiceImpl) RateOrder(ctx context.Context, userID string, orderID uuid.UUID, rating int) (*models.Order, *ServiceError) {
	if rating < 1 || rating > 5 {
		return nil, badRequest("Rating must be between 1 and 5")
	}
	if err := s.orderRepo.UpdateRating(ctx, userID, orderID, rating); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to rate order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to save rating")
	}
	return s.GetOrder(ctx, userID, orderID)
}

// ListAllOrders is the admin view across all users. status may be empty.
func (s *orderServiceImpl) ListAllOrders(ctx context.Context, status string, page, limit int) (*OrderResponse, *ServiceError) {
	if status != "" && !models.IsValidOrderStatus(status) {
		return nil, badRequest("Unknown order status: " + status)
	}
	orders, total, err := s.orderRepo.FindAll(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderResponse{Orders: orders, Meta: newMetaData(page, limit, total)}, nil
}

// SetOrderStatus overwrites the status unconditionally. Any status may move
// to any other; there is no transition table.
func (s *orderServiceImpl) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.IsValidOrderStatus(status) {
		return nil, badRequest("Unknown order status: " + status)
	}

	before, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to update order status")
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to update order status", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to update order status")
	}

	s.statusChanged(ctx, *before, status, "admin")

	after := *before
	after.OrderStatus = status
	after.UpdatedAt = time.Now()
	return &after, nil
}

// HandlePaymentEvent settles card orders from a verified Stripe event.
// UPI and COD orders are never touched here.
func (s *orderServiceImpl) HandlePaymentEvent(ctx context.Context, event stripe.Event) *ServiceError {
	var status string
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.OrderStatusSuccess
	case "payment_intent.payment_failed":
		status = models.OrderStatusFailed
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		return nil
	}

	var pi stripe.PaymentIntent
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &pi) != nil || pi.ID == "" {
		return badRequest("Malformed payment intent payload")
	}

	before, err := s.orderRepo.UpdateStatusByPaymentReference(ctx, pi.ID, status)
	if err != nil {
		s.logger.Error("Failed to reconcile payment", zap.String("payment_intent", pi.ID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to reconcile payment"}
	}
	if len(before) == 0 {
		s.logger.Warn("No orders for payment intent", zap.String("payment_intent", pi.ID), zap.String("status", status))
		if status == models.OrderStatusSuccess {
			// checkout not confirmed yet; a non-2xx makes Stripe redeliver
			return conflict("Orders for payment intent not placed yet")
		}
		return nil
	}

	for _, o := range before {
		if o.OrderStatus != status {
			s.statusChanged(ctx, o, status, "stripe")
		}
	}
	s.logger.Info("Payment reconciled",
		zap.String("payment_intent", pi.ID),
		zap.String("status", status),
		zap.Int("orders", len(before)),
	)
	return nil
}

func (s *orderServiceImpl) statusChanged(ctx context.Context, before models.Order, newStatus, source string) {
	s.logger.Info("Order status changed",
		zap.String("order_id", before.ID.String()),
		zap.String("old_status", before.OrderStatus),
		zap.String("new_status", newStatus),
		zap.String("source", source),
	)
	publishEvent(ctx, s.publisher, s.logger, models.EventOrderStatusChanged, before.ID.String(), models.OrderStatusChangedEvent{
		EventType: models.EventOrderStatusChanged,
		OrderID:   before.ID.String(),
		UserID:    before.UserID,
		OldStatus: before.OrderStatus,
		NewStatus: newStatus,
		Source:    source,
		Timestamp: time.Now(),
	})
	recordMetrics(s.metrics, func(ctx context.Context, m aws_pkg.MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricOrderStatusChanged, map[string]string{"Status": newStatus, "Source": source})
	})
}
