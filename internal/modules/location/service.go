// README: Location service geocodes both ends of a route and measures the distance between them.
package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"transferair/internal/types"
)

type Service struct {
	geocoder Geocoder
	router   Router
	logger   *zap.Logger
}

// NewService wires a geocoder and an optional router. Without a router every
// measurement is great-circle.
func NewService(geocoder Geocoder, router Router, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{geocoder: geocoder, router: router, logger: logger}
}

// Locate geocodes query. Transport failures are logged and reported as ErrNotFound.
func (s *Service) Locate(ctx context.Context, query string) (types.Point, error) {
	if strings.TrimSpace(query) == "" {
		return types.Point{}, fmt.Errorf("%w: empty place name", ErrNotFound)
	}
	p, err := s.geocoder.Geocode(ctx, query)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrNotFound) {
		return types.Point{}, err
	}
	s.logger.Warn("geocode failed", zap.String("query", query), zap.Error(err))
	return types.Point{}, fmt.Errorf("%w: %q: %v", ErrNotFound, query, err)
}

// Distance resolves origin and destination concurrently. Road distance is used
// when a router is configured and answers; otherwise the great-circle distance.
func (s *Service) Distance(ctx context.Context, origin, destination string) (Measurement, error) {
	var m Measurement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Locate(gctx, origin)
		m.Origin = p
		return err
	})
	g.Go(func() error {
		p, err := s.Locate(gctx, destination)
		m.Destination = p
		return err
	})
	if err := g.Wait(); err != nil {
		return Measurement{}, err
	}

	m.Km = GreatCircleKm(m.Origin, m.Destination)
	m.Method = MethodGreatCircle
	if s.router == nil {
		return m, nil
	}

	km, err := s.router.RoadDistanceKm(ctx, m.Origin, m.Destination)
	if err != nil || km <= 0 {
		s.logger.Info("road distance unavailable, using great-circle",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		return m, nil
	}
	m.Km = km
	m.Method = MethodRoad
	return m, nil
}
