// README: Builds the fare resolver and its geo providers from config; shared by both binaries.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"transferair/internal/config"
	"transferair/internal/maps"
	"transferair/internal/modules/location"
	"transferair/internal/modules/pricing"
)

// NewGeocoder selects the geocoder and puts the Redis cache in front of it when rdb is set.
func NewGeocoder(cfg config.GeoConfig, httpClient *http.Client, rdb *redis.Client, logger *zap.Logger) (location.Geocoder, error) {
	var g location.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		svc, err := maps.NewGeocodeService(cfg.GoogleKey)
		if err != nil {
			return nil, err
		}
		g = svc
	case config.GeocoderNominatim, "":
		client, err := location.NewNominatimClient(httpClient, cfg.NominatimURL, cfg.UserAgent, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		g = client
	default:
		return nil, fmt.Errorf("unknown geocoder %q", cfg.Geocoder)
	}
	if rdb != nil {
		g = location.NewCachedGeocoder(g, rdb, logger)
	}
	return g, nil
}

// NewRouteProvider returns nil when road distances are disabled.
func NewRouteProvider(cfg config.GeoConfig, httpClient *http.Client) (location.Router, error) {
	switch cfg.Router {
	case config.RouterNone, "":
		return nil, nil
	case config.RouterOSRM:
		return location.NewOSRMRouter(httpClient, cfg.OSRMURL, cfg.Timeout), nil
	case config.RouterGoogle:
		svc, err := maps.NewRouteService(cfg.GoogleKey)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("unknown router %q", cfg.Router)
}

// LoadTable reads the fares file, then overlays database fares when configured.
func LoadTable(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*pricing.Table, error) {
	table, err := pricing.LoadTable(cfg.Fares.File)
	if err != nil {
		return nil, err
	}
	if cfg.Fares.Source != config.FaresFromDB {
		return table, nil
	}
	if pool == nil {
		return nil, fmt.Errorf("fares source %q needs a database", cfg.Fares.Source)
	}
	return pricing.LoadTableFromStore(ctx, table, pricing.NewStore(pool))
}

// NewPricing wires the resolver. pool and rdb are optional.
func NewPricing(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) (*pricing.Service, error) {
	table, err := LoadTable(ctx, cfg, pool)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{}
	geocoder, err := NewGeocoder(cfg.Geo, httpClient, rdb, logger)
	if err != nil {
		return nil, err
	}
	router, err := NewRouteProvider(cfg.Geo, httpClient)
	if err != nil {
		return nil, err
	}
	logger.Info("fare table loaded",
		zap.Int("version", table.Version()),
		zap.Int("fares", len(table.Entries())),
		zap.String("geocoder", cfg.Geo.Geocoder),
		zap.String("router", cfg.Geo.Router))
	return pricing.NewService(table, location.NewService(geocoder, router, logger), logger), nil
}
