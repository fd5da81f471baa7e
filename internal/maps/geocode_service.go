package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"transferair/internal/modules/location"
	"transferair/internal/types"
)

var _ location.Geocoder = (*GeocodeService)(nil)

// GeocodeService resolves place names with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey string, opts ...maps.ClientOption) (*GeocodeService, error) {
	client, err := newClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &GeocodeService{client: client}, nil
}

func newClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// Geocode returns the first match for query, biased to Russia.
func (s *GeocodeService) Geocode(ctx context.Context, query string) (types.Point, error) {
	r := &maps.GeocodingRequest{
		Address:  query,
		Language: "ru",
		Region:   "ru",
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return types.Point{}, fmt.Errorf("%w: %q", location.ErrNotFound, query)
		}
		return types.Point{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("%w: %q", location.ErrNotFound, query)
	}

	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
