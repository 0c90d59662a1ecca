package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tivrax/storefront/models"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// CheckoutSessionStore persists checkout wizard state between requests.
type CheckoutSessionStore interface {
	Save(ctx context.Context, session *models.CheckoutSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error)
	AcquireConfirmLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseConfirmLock(ctx context.Context, id uuid.UUID) error
}

// RedisCheckoutSessionStore keeps each session as a JSON blob with a TTL
// that is refreshed on every save.
type RedisCheckoutSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCheckoutSessionStore(client *redis.Client, ttl time.Duration) *RedisCheckoutSessionStore {
	return &RedisCheckoutSessionStore{client: client, ttl: ttl}
}

func (r *RedisCheckoutSessionStore) sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

func (r *RedisCheckoutSessionStore) lockKey(id uuid.UUID) string {
	return fmt.Sprintf("checkout:lock:%s", id)
}

func (r *RedisCheckoutSessionStore) Save(ctx context.Context, session *models.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal checkout session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(session.ID), data, r.ttl).Err()
}

func (r *RedisCheckoutSessionStore) Get(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session models.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}
	return &session, nil
}

// AcquireConfirmLock returns false when another confirm for the same
// session is already in flight.
func (r *RedisCheckoutSessionStore) AcquireConfirmLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.lockKey(id), "1", ttl).Result()
}

func (r *RedisCheckoutSessionStore) ReleaseConfirmLock(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, r.lockKey(id)).Err()
}
