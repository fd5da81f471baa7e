// README: Fare resolver: fixed table first, distance pricing as the fallback.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"transferair/internal/modules/location"
)

var (
	ErrLocationNotFound   = location.ErrNotFound
	ErrRouteNotFound      = location.ErrNoRoute
	ErrPricingUnavailable = errors.New("pricing unavailable")
)

// Service is stateless apart from its immutable table and is safe for concurrent use.
type Service struct {
	table     *Table
	distancer Distancer
	logger    *zap.Logger
}

// NewService builds a resolver. distancer may be nil, in which case routes
// without a fixed fare cannot be priced.
func NewService(table *Table, distancer Distancer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: table, distancer: distancer, logger: logger}
}

func (s *Service) Table() *Table {
	return s.table
}

// FixedFare checks the destination first. The origin is consulted only when the
// destination is the base city, which covers return trips to Mineral Waters.
func (s *Service) FixedFare(origin, destination string) (Entry, bool) {
	if e, ok := s.table.Lookup(destination); ok {
		return e, true
	}
	if s.table.IsBase(destination) {
		return s.table.Lookup(origin)
	}
	return Entry{}, false
}

// Resolve quotes every vehicle class for the route. On failure the error
// matches ErrPricingUnavailable and the underlying cause.
func (s *Service) Resolve(ctx context.Context, origin, destination string) (Quote, error) {
	if e, ok := s.FixedFare(origin, destination); ok {
		return Quote{Prices: e.Prices, Source: SourceFixed, Matched: e.Name}, nil
	}
	if s.distancer == nil {
		return Quote{}, fmt.Errorf("%w: no fixed fare and distance pricing is disabled", ErrPricingUnavailable)
	}

	from, to := s.table.GeocodeQuery(origin), s.table.GeocodeQuery(destination)
	m, err := s.distancer.Distance(ctx, from, to)
	if err != nil {
		s.logger.Info("distance pricing failed",
			zap.String("origin", from),
			zap.String("destination", to),
			zap.Error(err))
		return Quote{}, fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
	}

	km := billableKm(m.Km)
	return Quote{
		Prices:     s.table.distancePrices(km),
		Source:     SourceDistance,
		DistanceKm: &km,
		Method:     string(m.Method),
	}, nil
}

// Summary renders a quote the way the bot and CLI show it.
func (s *Service) Summary(q Quote) []ClassPrice {
	out := make([]ClassPrice, 0, len(Classes))
	for _, c := range Classes {
		out = append(out, ClassPrice{Class: c, Title: s.table.Class(c).Title, Amount: q.Prices.For(c)})
	}
	return out
}

type ClassPrice struct {
	Class  VehicleClass
	Title  string
	Amount int
}
