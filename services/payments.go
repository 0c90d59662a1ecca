package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

var ErrUPINotConfigured = errors.New("UPI payments are not configured")

// UPILinkBuilder renders upi://pay deep links for GPay / PhonePe.
type UPILinkBuilder struct {
	payeeVPA  string
	payeeName string
}

func NewUPILinkBuilder(payeeVPA, payeeName string) *UPILinkBuilder {
	return &UPILinkBuilder{payeeVPA: payeeVPA, payeeName: payeeName}
}

func (b *UPILinkBuilder) Enabled() bool { return b != nil && b.payeeVPA != "" }

// Link returns the deep link for amount in INR with two decimals.
func (b *UPILinkBuilder) Link(amount decimal.Decimal, note string) (string, error) {
	if !b.Enabled() {
		return "", ErrUPINotConfigured
	}
	if note == "" {
		note = "Payment for order"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		upiEscape(b.payeeVPA),
		upiEscape(b.payeeName),
		amount.StringFixed(2),
		upiEscape(note),
	), nil
}

// UPI apps expect %20 rather than '+' for spaces.
func upiEscape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// PaymentGateway is the card processor.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (id, clientSecret string, err error)
	PaymentIntentStatus(ctx context.Context, id string) (stripe.PaymentIntentStatus, error)
	ParseWebhook(payload []byte, signature string) (stripe.Event, error)
}

// StripeGateway talks to Stripe using the package-level API key.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (g *StripeGateway) PaymentIntentStatus(ctx context.Context, id string) (stripe.PaymentIntentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return "", fmt.Errorf("stripe get payment intent: %w", err)
	}
	return pi.Status, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// toMinorUnits converts rupees to paise.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
