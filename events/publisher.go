package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	aws_pkg "github.com/tivrax/storefront/pkg/aws"
)

// Publisher sends domain events to the outside world. key is the ordering
// key (checkout or order id); payload is marshalled to JSON.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

// Backends accepted by EVENTS_BACKEND.
const (
	BackendSNS   = "sns"
	BackendKafka = "kafka"
	BackendNone  = "none"
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// SNSPublisher publishes every event to one topic; subscribers filter on
// the event_type field of the body.
type SNSPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return p.client.Publish(ctx, p.topicArn, body)
}

func (p *SNSPublisher) Close() error { return nil }

// ParseBrokers splits a comma separated KAFKA_BROKERS value.
func ParseBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
