package repository_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/repository"
)

func newUnreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       "localhost:0",
		MaxRetries: -1,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
	})
}

func TestCheckoutSessionStore_SurfacesRedisErrors(t *testing.T) {
	store := repository.NewRedisCheckoutSessionStore(newUnreachableRedis(), 30*time.Minute)
	ctx := context.Background()

	s := models.NewCheckoutSession("user-1", models.CheckoutSourceCart, nil, time.Now())
	assert.Error(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrSessionNotFound)
	assert.Nil(t, got)

	ok, err := store.AcquireConfirmLock(ctx, uuid.New(), time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}
