package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tivrax/storefront/models"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"

	DefaultCacheTTL = 10 * time.Minute
)

// ProductCache keeps product details and listing pages in Redis. Listing
// keys embed a version number; bumping the version orphans every cached page
// at once and lets them expire on their own.
type ProductCache struct {
	redis   *redis.Client
	ttl     time.Duration
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
}

// NewProductCache returns nil when client is nil; a nil cache always misses.
func NewProductCache(client *redis.Client, ttl time.Duration, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) *ProductCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ProductCache{redis: client, ttl: ttl, metrics: metrics, logger: logger}
}

func (pc *ProductCache) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	if pc == nil {
		return nil, false
	}
	raw, err := pc.redis.Get(ctx, ProductCachePrefix+id.String()).Bytes()
	if err != nil {
		pc.miss("detail", err)
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		pc.logger.Warn("Failed to unmarshal cached product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, false
	}
	pc.hit("detail")
	return &p, true
}

func (pc *ProductCache) SetProductAsync(p *models.Product) {
	if pc == nil || p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		pc.logger.Warn("Failed to marshal product for cache", zap.String("product_id", p.ID.String()), zap.Error(err))
		return
	}
	key := ProductCachePrefix + p.ID.String()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pc.redis.Set(ctx, key, raw, pc.ttl).Err(); err != nil {
			pc.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (pc *ProductCache) GetList(ctx context.Context, f models.ProductFilter, page, limit int) (*ProductListResponse, bool) {
	if pc == nil {
		return nil, false
	}
	version, err := pc.version(ctx)
	if err != nil {
		pc.miss("list", err)
		return nil, false
	}
	raw, err := pc.redis.Get(ctx, listKey(version, f, page, limit)).Bytes()
	if err != nil {
		pc.miss("list", err)
		return nil, false
	}
	var resp ProductListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		pc.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	pc.hit("list")
	return &resp, true
}

func (pc *ProductCache) SetListAsync(f models.ProductFilter, page, limit int, resp *ProductListResponse) {
	if pc == nil || resp == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		pc.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		version, err := pc.version(ctx)
		if err != nil {
			return
		}
		if err := pc.redis.Set(ctx, listKey(version, f, page, limit), raw, pc.ttl).Err(); err != nil {
			pc.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// InvalidateProduct drops the detail entry and bumps the list version.
func (pc *ProductCache) InvalidateProduct(ctx context.Context, id uuid.UUID) {
	if pc == nil {
		return
	}
	if v, err := pc.redis.Incr(ctx, CacheVersionKey).Result(); err != nil {
		pc.logger.Error("Failed to invalidate product lists", zap.String("product_id", id.String()), zap.Error(err))
	} else {
		pc.logger.Debug("Product lists invalidated", zap.Int64("version", v))
	}
	if err := pc.redis.Del(ctx, ProductCachePrefix+id.String()).Err(); err != nil {
		pc.logger.Warn("Failed to delete product cache", zap.String("product_id", id.String()), zap.Error(err))
	}
}

func (pc *ProductCache) version(ctx context.Context) (int64, error) {
	v, err := pc.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && v > 0 {
		return v, nil
	}
	if errors.Is(err, redis.Nil) {
		// SetNX so two instances starting together agree on version 1
		if err := pc.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return pc.redis.Get(ctx, CacheVersionKey).Int64()
	}
	if err == nil {
		return 0, fmt.Errorf("invalid cache version %d", v)
	}
	return 0, err
}

func (pc *ProductCache) hit(kind string) {
	recordMetrics(pc.metrics, func(ctx context.Context, m aws_pkg.MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricCacheHits, map[string]string{"Cache": kind})
	})
}

func (pc *ProductCache) miss(kind string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		pc.logger.Debug("Product cache unavailable", zap.String("cache", kind), zap.Error(err))
	}
	recordMetrics(pc.metrics, func(ctx context.Context, m aws_pkg.MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricCacheMisses, map[string]string{"Cache": kind})
	})
}

func listKey(version int64, f models.ProductFilter, page, limit int) string {
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:s:%s:q:%s", ProductListCachePrefix, version, page, limit, f.Category, f.Style, strings.ToLower(f.Query))
}
