package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type CheckoutStep string

const (
	StepShippingForm     CheckoutStep = "shipping_form"
	StepPaymentSelection CheckoutStep = "payment_selection"
	StepConfirmed        CheckoutStep = "confirmed"
)

const (
	CheckoutSourceCart   = "cart"
	CheckoutSourceBuyNow = "buy_now"
)

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentGPay    PaymentMethod = "gpay"
	PaymentPhonePe PaymentMethod = "phonepe"
	PaymentCard    PaymentMethod = "card"
)

// IsUPI reports whether the method settles through a upi:// deep link.
func (m PaymentMethod) IsUPI() bool {
	return m == PaymentGPay || m == PaymentPhonePe
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCOD, PaymentGPay, PaymentPhonePe, PaymentCard:
		return true
	}
	return false
}

var (
	ErrInvalidTransition     = errors.New("checkout step does not allow this action")
	ErrPaymentMethodRequired = errors.New("payment method required")
	ErrPaymentIntentRequired = errors.New("payment intent has not been triggered")
	ErrInvalidPaymentMethod  = errors.New("unsupported payment method")
)

// ShippingDetails is the shipping form. Tags are checked by the shipping
// validator; "digits" is a custom rule for fixed-length numeric strings.
type ShippingDetails struct {
	Name    string `json:"name" validate:"required,min=3"`
	Phone   string `json:"phone" validate:"required,digits=10"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,min=10"`
	Pincode string `json:"pincode" validate:"required,digits=6"`
}

// PaymentIntent is the external half of a non-COD payment. For UPI methods
// DeepLink is set and Triggered flips once the shopper opens it; for card
// Reference is the Stripe PaymentIntent id.
type PaymentIntent struct {
	Reference    string `json:"reference,omitempty"`
	DeepLink     string `json:"deep_link,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Triggered    bool   `json:"triggered"`
}

// CheckoutSession is the wizard state, kept in Redis for the lifetime of a
// checkout. Steps only move forward.
type CheckoutSession struct {
	ID            uuid.UUID        `json:"id"`
	UserID        string           `json:"user_id"`
	Step          CheckoutStep     `json:"step"`
	Source        string           `json:"source"`
	Lines         []LineItem       `json:"lines"`
	Shipping      *ShippingDetails `json:"shipping,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method,omitempty"`
	PaymentIntent *PaymentIntent   `json:"payment_intent,omitempty"`
	OrderIDs      []uuid.UUID      `json:"order_ids,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewCheckoutSession(userID, source string, lines []LineItem, now time.Time) *CheckoutSession {
	return &CheckoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		Step:      StepShippingForm,
		Source:    source,
		Lines:     lines,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetShipping stores already-validated shipping details and advances to
// payment selection.
func (s *CheckoutSession) SetShipping(d ShippingDetails, now time.Time) error {
	if s.Step != StepShippingForm {
		return ErrInvalidTransition
	}
	s.Shipping = &d
	s.Step = StepPaymentSelection
	s.UpdatedAt = now
	return nil
}

// SelectPayment records the method and replaces any earlier intent.
func (s *CheckoutSession) SelectPayment(m PaymentMethod, intent *PaymentIntent, now time.Time) error {
	if s.Step != StepPaymentSelection {
		return ErrInvalidTransition
	}
	if !m.IsValid() {
		return ErrInvalidPaymentMethod
	}
	s.PaymentMethod = m
	s.PaymentIntent = intent
	s.UpdatedAt = now
	return nil
}

// TriggerIntent marks the external payment intent as opened by the shopper.
func (s *CheckoutSession) TriggerIntent(now time.Time) error {
	if s.Step != StepPaymentSelection {
		return ErrInvalidTransition
	}
	if s.PaymentMethod == "" {
		return ErrPaymentMethodRequired
	}
	if s.PaymentIntent == nil {
		return ErrInvalidPaymentMethod
	}
	s.PaymentIntent.Triggered = true
	s.UpdatedAt = now
	return nil
}

// CanConfirm checks the PaymentSelection -> Confirmed guards.
func (s *CheckoutSession) CanConfirm() error {
	if s.Step != StepPaymentSelection {
		return ErrInvalidTransition
	}
	if s.PaymentMethod == "" {
		return ErrPaymentMethodRequired
	}
	switch {
	case s.PaymentMethod.IsUPI():
		if s.PaymentIntent == nil || !s.PaymentIntent.Triggered {
			return ErrPaymentIntentRequired
		}
	case s.PaymentMethod == PaymentCard:
		if s.PaymentIntent == nil || s.PaymentIntent.Reference == "" {
			return ErrPaymentIntentRequired
		}
	}
	return nil
}

func (s *CheckoutSession) MarkConfirmed(orderIDs []uuid.UUID, now time.Time) error {
	if err := s.CanConfirm(); err != nil {
		return err
	}
	s.OrderIDs = orderIDs
	s.Step = StepConfirmed
	s.UpdatedAt = now
	return nil
}

// PaymentReference is what gets stored on the order rows.
func (s *CheckoutSession) PaymentReference() string {
	if s.PaymentIntent == nil {
		return ""
	}
	return s.PaymentIntent.Reference
}

type StartCheckoutRequest struct {
	Source    string     `json:"source" binding:"required,oneof=cart buy_now"`
	ProductID *uuid.UUID `json:"product_id"`
	Size      string     `json:"size"`
	Quantity  int        `json:"quantity" binding:"omitempty,min=1"`
}

type SelectPaymentRequest struct {
	Method string `json:"method" binding:"required"`
}
