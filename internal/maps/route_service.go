package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"transferair/internal/modules/location"
	"transferair/internal/types"
)

var _ location.Router = (*RouteService)(nil)

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := newClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &RouteService{client: client}, nil
}

// RoadDistanceKm returns the driving distance of the first suggested route.
func (s *RouteService) RoadDistanceKm(ctx context.Context, from, to types.Point) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      from.String(),
		Destination: to.String(),
		Mode:        maps.TravelModeDriving,
		Language:    "ru",
		Region:      "ru",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return 0, fmt.Errorf("%w: %v", location.ErrNoRoute, err)
		}
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, location.ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return float64(leg.Distance.Meters) / 1000, nil
}

func isZeroResults(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "NOT_FOUND")
}
