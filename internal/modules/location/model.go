// README: Geocoding and routing contracts plus the distance measurement they produce.
package location

import (
	"context"
	"errors"

	"transferair/internal/types"
)

var (
	ErrNotFound = errors.New("location not found")
	ErrNoRoute  = errors.New("route not found")
)

// Geocoder resolves free text to a point. A place the provider does not know
// is reported as ErrNotFound; any other error is a transport failure.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Point, error)
}

// Router measures driving distance between two points.
type Router interface {
	RoadDistanceKm(ctx context.Context, from, to types.Point) (float64, error)
}

type Method string

const (
	MethodGreatCircle Method = "great_circle"
	MethodRoad        Method = "road"
)

type Measurement struct {
	Origin      types.Point
	Destination types.Point
	Km          float64
	Method      Method
}
