package services

import (
	"context"
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

// CheckoutOptions tunes the checkout flow.
type CheckoutOptions struct {
	ClearCartOnOrder     bool
	Currency             string
	ConfirmLockTTL       time.Duration
	RedirectTo           string
	RedirectAfterSeconds int
}

// CheckoutView is a session together with its current totals.
type CheckoutView struct {
	Session *models.CheckoutSession `json:"session"`
	Summary models.CartSummary      `json:"summary"`
}

// ConfirmResult is returned once orders exist for a session.
type ConfirmResult struct {
	Session              *models.CheckoutSession `json:"session"`
	Orders               []models.Order          `json:"orders"`
	Summary              models.CartSummary      `json:"summary"`
	RedirectTo           string                  `json:"redirect_to"`
	RedirectAfterSeconds int                     `json:"redirect_after_seconds"`
}

// CheckoutService drives the shipping -> payment -> confirmed wizard.
type CheckoutService interface {
	StartCheckout(ctx context.Context, userID string, req *models.StartCheckoutRequest) (*CheckoutView, *ServiceError)
	GetSession(ctx context.Context, userID string, sessionID uuid.UUID) (*CheckoutView, *ServiceError)
	SubmitShipping(ctx context.Context, userID string, sessionID uuid.UUID, form models.ShippingDetails) (*CheckoutView, *ServiceError)
	SelectPayment(ctx context.Context, userID string, sessionID uuid.UUID, method string) (*CheckoutView, *ServiceError)
	TriggerPaymentIntent(ctx context.Context, userID string, sessionID uuid.UUID) (*CheckoutView, *ServiceError)
	Confirm(ctx context.Context, userID string, sessionID uuid.UUID) (*ConfirmResult, *ServiceError)
}

type checkoutServiceImpl struct {
	sessions    repository.CheckoutSessionStore
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	validator   *ShippingValidator
	upi         *UPILinkBuilder
	gateway     PaymentGateway
	publisher   events.Publisher
	metrics     aws_pkg.MetricsRecorder
	opts        CheckoutOptions
	logger      *zap.Logger
	now         func() time.Time
}

func NewCheckoutService(
	sessions repository.CheckoutSessionStore,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	upi *UPILinkBuilder,
	gateway PaymentGateway,
	publisher events.Publisher,
	metrics aws_pkg.MetricsRecorder,
	opts CheckoutOptions,
	logger *zap.Logger,
) CheckoutService {
	if opts.ConfirmLockTTL <= 0 {
		opts.ConfirmLockTTL = 30 * time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "inr"
	}
	if opts.RedirectTo == "" {
		opts.RedirectTo = "/orders"
	}
	if opts.RedirectAfterSeconds <= 0 {
		opts.RedirectAfterSeconds = 3
	}
	return &checkoutServiceImpl{
		sessions:    sessions,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		validator:   NewShippingValidator(),
		upi:         upi,
		gateway:     gateway,
		publisher:   publisher,
		metrics:     metrics,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *checkoutServiceImpl) StartCheckout(ctx context.Context, userID string, req *models.StartCheckoutRequest) (*CheckoutView, *ServiceError) {
	var lines []models.LineItem
	var svcErr *ServiceError

	switch req.Source {
	case models.CheckoutSourceCart:
		lines, svcErr = s.snapshotCart(ctx, userID)
	case models.CheckoutSourceBuyNow:
		lines, svcErr = s.snapshotBuyNow(ctx, req)
	default:
		svcErr = badRequest("Source must be cart or buy_now")
	}
	if svcErr != nil {
		return nil, svcErr
	}

	session := models.NewCheckoutSession(userID, req.Source, lines, s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save checkout session", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Checkout is temporarily unavailable"}
	}

	s.logger.Info("Checkout started",
		zap.String("checkout_id", session.ID.String()),
		zap.String("user_id", userID),
		zap.String("source", req.Source),
		zap.Int("lines", len(lines)),
	)
	return s.view(session), nil
}

func (s *checkoutServiceImpl) snapshotCart(ctx context.Context, userID string) ([]models.LineItem, *ServiceError) {
	cartLines, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart for checkout", zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	if len(cartLines) == 0 {
		return nil, badRequest("Your cart is empty")
	}
	for _, l := range cartLines {
		if l.Product == nil {
			return nil, conflict("A product in your cart is no longer available")
		}
	}
	return toLineItems(cartLines), nil
}

func (s *checkoutServiceImpl) snapshotBuyNow(ctx context.Context, req *models.StartCheckoutRequest) ([]models.LineItem, *ServiceError) {
	if req.ProductID == nil {
		return nil, badRequest("product_id is required for buy_now")
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	product, err := s.productRepo.FindByID(ctx, *req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("Failed to load product for checkout", zap.Error(err))
		return nil, internal("Failed to load product")
	}

	size := req.Size
	if product.HasSizes() {
		if svcErr := checkSizeStock(product, size, qty); svcErr != nil {
			return nil, svcErr
		}
	} else {
		size = ""
	}

	return []models.LineItem{{
		ProductID:       product.ID,
		Name:            product.Name,
		ImageURL:        product.ImageURL,
		Size:            size,
		Quantity:        qty,
		Price:           product.Price,
		DiscountedPrice: product.DiscountedPrice,
	}}, nil
}

func (s *checkoutServiceImpl) GetSession(ctx context.Context, userID string, sessionID uuid.UUID) (*CheckoutView, *ServiceError) {
	session, svcErr := s.load(ctx, userID, sessionID)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.view(session), nil
}

func (s *checkoutServiceImpl) SubmitShipping(ctx context.Context, userID string, sessionID uuid.UUID, form models.ShippingDetails) (*CheckoutView, *ServiceError) {
	session, svcErr := s.load(ctx, userID, sessionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if session.Step != models.StepShippingForm {
		return nil, transitionError(models.ErrInvalidTransition)
	}

	form = Normalize(form)
	if fields := s.validator.Validate(form); fields != nil {
		return nil, &ServiceError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "Invalid shipping details",
			Fields:     fields,
		}
	}

	if err := session.SetShipping(form, s.now()); err != nil {
		return nil, transitionError(err)
	}
	return s.save(ctx, session)
}

func (s *checkoutServiceImpl) SelectPayment(ctx context.Context, userID string, sessionID uuid.UUID, method string) (*CheckoutView, *ServiceError) {
	m := models.PaymentMethod(method)
	if !m.IsValid() {
		return nil, fromSentinel(http.StatusBadRequest, models.ErrInvalidPaymentMethod)
	}

	session, svcErr := s.load(ctx, userID, sessionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if session.Step != models.StepPaymentSelection {
		return nil, transitionError(models.ErrInvalidTransition)
	}

	intent, svcErr := s.createIntent(ctx, session, m)
	if svcErr != nil {
		return nil, svcErr
	}
	if err := session.SelectPayment(m, intent, s.now()); err != nil {
		return nil, transitionError(err)
	}
	return s.save(ctx, session)
}

func (s *checkoutServiceImpl) createIntent(ctx context.Context, session *models.CheckoutSession, m models.PaymentMethod) (*models.PaymentIntent, *ServiceError) {
	total := Summarize(session.Lines).TotalAmount

	switch {
	case m.IsUPI():
		link, err := s.upi.Link(total, "Payment for order")
		if err != nil {
			return nil, fromSentinel(http.StatusServiceUnavailable, ErrUPINotConfigured)
		}
		return &models.PaymentIntent{DeepLink: link}, nil

	case m == models.PaymentCard:
		if s.gateway == nil {
			return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Card payments are not configured"}
		}
		id, secret, err := s.gateway.CreatePaymentIntent(ctx, toMinorUnits(total), s.opts.Currency, map[string]string{
			"checkout_id": session.ID.String(),
			"user_id":     session.UserID,
		})
		if err != nil {
			s.logger.Error("Failed to create card payment intent", zap.String("checkout_id", session.ID.String()), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to start card payment"}
		}
		return &models.PaymentIntent{Reference: id, ClientSecret: secret}, nil
	}
	return nil, nil
}

func (s *checkoutServiceImpl) TriggerPaymentIntent(ctx context.Context, userID string, sessionID uuid.UUID) (*CheckoutView, *ServiceError) {
	session, svcErr := s.load(ctx, userID, sessionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if err := session.TriggerIntent(s.now()); err != nil {
		return nil, transitionError(err)
	}
	return s.save(ctx, session)
}

// Confirm writes the orders for a session. It is safe to call repeatedly:
// a session that already has orders returns them instead of writing again.
func (s *checkoutServiceImpl) Confirm(ctx context.Context, userID string, sessionID uuid.UUID) (*ConfirmResult, *ServiceError) {
	session, svcErr := s.load(ctx, userID, sessionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if session.Step == models.StepConfirmed {
		return s.confirmedResult(ctx, session)
	}
	if err := session.CanConfirm(); err != nil {
		return nil, transitionError(err)
	}

	acquired, err := s.sessions.AcquireConfirmLock(ctx, session.ID, s.opts.ConfirmLockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire confirm lock", zap.String("checkout_id", session.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Checkout is temporarily unavailable"}
	}
	if !acquired {
		return nil, conflict("Order is already being placed")
	}
	defer func() {
		if err := s.sessions.ReleaseConfirmLock(context.WithoutCancel(ctx), session.ID); err != nil {
			s.logger.Warn("Failed to release confirm lock", zap.String("checkout_id", session.ID.String()), zap.Error(err))
		}
	}()

	// orders may have landed while the session save failed on an earlier attempt
	existing, err := s.orderRepo.FindByCheckoutID(ctx, session.ID)
	if err != nil {
		s.logger.Error("Failed to check existing orders", zap.Error(err))
		return nil, internal("Failed to place order")
	}
	if len(existing) > 0 {
		return s.finishConfirmed(ctx, session, existing)
	}

	orders := s.buildOrders(session)
	s.settleCardOrders(ctx, session, orders)
	var ordered []models.OrderedCartLine
	if s.opts.ClearCartOnOrder && session.Source == models.CheckoutSourceCart {
		for _, l := range session.Lines {
			if l.CartLineID != nil {
				ordered = append(ordered, models.OrderedCartLine{ID: *l.CartLineID, Size: l.Size, Quantity: l.Quantity})
			}
		}
	}

	if err := s.orderRepo.PlaceOrders(ctx, orders, session.UserID, ordered); err != nil {
		s.logger.Error("Failed to place orders", zap.String("checkout_id", session.ID.String()), zap.Error(err))
		return nil, internal("Failed to place order")
	}

	summary := Summarize(session.Lines)
	s.logger.Info("Order placed",
		zap.String("checkout_id", session.ID.String()),
		zap.String("user_id", session.UserID),
		zap.String("payment_mode", string(session.PaymentMethod)),
		zap.Int("lines", len(orders)),
		zap.String("total", summary.TotalAmount.StringFixed(2)),
	)

	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID.String())
	}
	publishEvent(ctx, s.publisher, s.logger, models.EventOrderPlaced, session.ID.String(), models.OrderPlacedEvent{
		EventType:   models.EventOrderPlaced,
		CheckoutID:  session.ID.String(),
		UserID:      session.UserID,
		OrderIDs:    orderIDs,
		PaymentMode: string(session.PaymentMethod),
		TotalAmount: summary.TotalAmount,
		Timestamp:   s.now(),
	})
	mode := string(session.PaymentMethod)
	amount, _ := summary.TotalAmount.Float64()
	recordMetrics(s.metrics, func(ctx context.Context, m aws_pkg.MetricsRecorder) {
		dims := map[string]string{"PaymentMode": mode}
		_ = m.RecordCount(ctx, aws_pkg.MetricOrdersCreated, dims)
		_ = m.RecordValue(ctx, aws_pkg.MetricOrderAmount, amount, dims)
	})

	return s.finishConfirmed(ctx, session, orders)
}

// settleCardOrders marks card orders Success when Stripe already reports
// the intent as paid. The webhook for it may have been delivered before
// these rows existed.
func (s *checkoutServiceImpl) settleCardOrders(ctx context.Context, session *models.CheckoutSession, orders []models.Order) {
	ref := session.PaymentReference()
	if session.PaymentMethod != models.PaymentCard || ref == "" || s.gateway == nil {
		return
	}
	status, err := s.gateway.PaymentIntentStatus(ctx, ref)
	if err != nil {
		s.logger.Warn("Failed to read payment intent status", zap.String("payment_intent", ref), zap.Error(err))
		return
	}
	if status != stripe.PaymentIntentStatusSucceeded {
		return
	}
	for i := range orders {
		orders[i].OrderStatus = models.OrderStatusSuccess
	}
}

func (s *checkoutServiceImpl) finishConfirmed(ctx context.Context, session *models.CheckoutSession, orders []models.Order) (*ConfirmResult, *ServiceError) {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	if err := session.MarkConfirmed(ids, s.now()); err != nil {
		return nil, transitionError(err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		// orders are durable; a retry finds them by checkout id
		s.logger.Warn("Failed to save confirmed session", zap.String("checkout_id", session.ID.String()), zap.Error(err))
	}
	return s.result(session, orders), nil
}

func (s *checkoutServiceImpl) confirmedResult(ctx context.Context, session *models.CheckoutSession) (*ConfirmResult, *ServiceError) {
	orders, err := s.orderRepo.FindByCheckoutID(ctx, session.ID)
	if err != nil {
		s.logger.Error("Failed to load confirmed orders", zap.Error(err))
		return nil, internal("Failed to load orders")
	}
	return s.result(session, orders), nil
}

func (s *checkoutServiceImpl) result(session *models.CheckoutSession, orders []models.Order) *ConfirmResult {
	return &ConfirmResult{
		Session:              session,
		Orders:               orders,
		Summary:              Summarize(session.Lines),
		RedirectTo:           s.opts.RedirectTo,
		RedirectAfterSeconds: s.opts.RedirectAfterSeconds,
	}
}

func (s *checkoutServiceImpl) buildOrders(session *models.CheckoutSession) []models.Order {
	ship := session.Shipping
	if ship == nil {
		ship = &models.ShippingDetails{}
	}
	orders := make([]models.Order, 0, len(session.Lines))
	for _, l := range session.Lines {
		orders = append(orders, models.Order{
			ID:               uuid.New(),
			CheckoutID:       session.ID,
			UserID:           session.UserID,
			ProductID:        l.ProductID,
			ProductName:      l.Name,
			ProductSize:      l.Size,
			ProductImage:     l.ImageURL,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice(),
			TotalPrice:       l.LineTotal(),
			ShippingName:     ship.Name,
			ShippingAddress:  ship.Address,
			Pincode:          ship.Pincode,
			PhoneNumber:      ship.Phone,
			Email:            ship.Email,
			PaymentMode:      string(session.PaymentMethod),
			PaymentReference: session.PaymentReference(),
			OrderStatus:      models.OrderStatusPending,
		})
	}
	return orders
}

// load fetches a session and hides sessions owned by other users.
func (s *checkoutServiceImpl) load(ctx context.Context, userID string, id uuid.UUID) (*models.CheckoutSession, *ServiceError) {
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, notFound("Checkout session not found or expired")
	}
	if err != nil {
		s.logger.Error("Failed to load checkout session", zap.String("checkout_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Checkout is temporarily unavailable"}
	}
	if session.UserID != userID {
		return nil, notFound("Checkout session not found or expired")
	}
	return session, nil
}

func (s *checkoutServiceImpl) save(ctx context.Context, session *models.CheckoutSession) (*CheckoutView, *ServiceError) {
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save checkout session", zap.String("checkout_id", session.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Checkout is temporarily unavailable"}
	}
	return s.view(session), nil
}

func (s *checkoutServiceImpl) view(session *models.CheckoutSession) *CheckoutView {
	return &CheckoutView{Session: session, Summary: Summarize(session.Lines)}
}

func transitionError(err error) *ServiceError {
	switch {
	case errors.Is(err, models.ErrPaymentMethodRequired),
		errors.Is(err, models.ErrPaymentIntentRequired),
		errors.Is(err, models.ErrInvalidPaymentMethod):
		return fromSentinel(http.StatusBadRequest, err)
	case errors.Is(err, models.ErrInvalidTransition):
		return fromSentinel(http.StatusConflict, err)
	}
	return internal(err.Error())
}
