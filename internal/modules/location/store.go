// README: Geocode cache backed by Redis, wrapped around any Geocoder.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"transferair/internal/types"
)

const (
	cacheKeyPrefix  = "transferair:geocode:"
	notFoundMarker  = "-"
	defaultCacheTTL = 30 * 24 * time.Hour
	defaultMissTTL  = time.Hour
)

type CachedGeocoder struct {
	next    Geocoder
	redis   *redis.Client
	logger  *zap.Logger
	ttl     time.Duration
	missTTL time.Duration
}

func NewCachedGeocoder(next Geocoder, rdb *redis.Client, logger *zap.Logger) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{
		next:    next,
		redis:   rdb,
		logger:  logger,
		ttl:     defaultCacheTTL,
		missTTL: defaultMissTTL,
	}
}

// Geocode serves from Redis when possible. Redis failures degrade to a direct
// lookup; only definite misses are cached negatively.
func (c *CachedGeocoder) Geocode(ctx context.Context, query string) (types.Point, error) {
	key := cacheKey(query)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if val == notFoundMarker {
			return types.Point{}, fmt.Errorf("%w: %q (cached)", ErrNotFound, query)
		}
		if p, ok := decodePoint(val); ok {
			return p, nil
		}
		c.logger.Warn("geocode cache: corrupt entry", zap.String("key", key), zap.String("value", val))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("geocode cache: read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := c.next.Geocode(ctx, query)
	switch {
	case err == nil:
		c.store(ctx, key, encodePoint(p), c.ttl)
	case errors.Is(err, ErrNotFound):
		c.store(ctx, key, notFoundMarker, c.missTTL)
	}
	return p, err
}

func (c *CachedGeocoder) store(ctx context.Context, key, val string, ttl time.Duration) {
	if err := c.redis.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.Warn("geocode cache: write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func encodePoint(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func decodePoint(s string) (types.Point, bool) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, false
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
