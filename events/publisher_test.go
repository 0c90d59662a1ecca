package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSNS struct {
	arn string
	msg []byte
	err error
}

func (m *mockSNS) Publish(ctx context.Context, topicArn string, message []byte) error {
	m.arn = topicArn
	m.msg = append([]byte(nil), message...)
	return m.err
}

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.msgs = append(m.msgs, msgs...)
	return m.err
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestSNSPublisher_PublishesJSON(t *testing.T) {
	sns := &mockSNS{}
	p := NewSNSPublisher(sns, "arn:aws:sns:ap-south-1:000000000000:storefront-orders")

	err := p.Publish(context.Background(), "order.placed", "chk-1", map[string]string{"event_type": "order.placed"})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:sns:ap-south-1:000000000000:storefront-orders", sns.arn)

	var out map[string]string
	require.NoError(t, json.Unmarshal(sns.msg, &out))
	assert.Equal(t, "order.placed", out["event_type"])
}

func TestSNSPublisher_PropagatesError(t *testing.T) {
	p := NewSNSPublisher(&mockSNS{err: errors.New("throttled")}, "arn")
	assert.Error(t, p.Publish(context.Background(), "order.placed", "k", struct{}{}))
}

func TestKafkaPublisher_KeyAndHeader(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w, "storefront.orders", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), "order.status_changed", "order-9", map[string]int{"n": 1}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-9", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "order.status_changed", string(w.msgs[0].Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&mockWriter{err: errors.New("no leader")}, "t", zap.NewNop())
	assert.Error(t, p.Publish(context.Background(), "order.placed", "k", struct{}{}))
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, ParseBrokers(" kafka-1:9092, ,kafka-2:9092"))
	assert.Nil(t, ParseBrokers(""))
}
