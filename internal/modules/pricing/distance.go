// README: Distance-based fallback pricing for routes without a fixed fare.
package pricing

import (
	"context"
	"math"

	"transferair/internal/modules/location"
)

// minDistanceKm keeps very short or same-point routes from quoting zero.
const minDistanceKm = 1.0

// Distancer measures the distance between two geocoder queries.
type Distancer interface {
	Distance(ctx context.Context, origin, destination string) (location.Measurement, error)
}

// billableKm rounds to one decimal and clamps to minDistanceKm.
func billableKm(km float64) float64 {
	d := math.Round(km*10) / 10
	if d < minDistanceKm {
		return minDistanceKm
	}
	return d
}

func (t *Table) distancePrices(km float64) Prices {
	var p Prices
	for _, c := range Classes {
		p.set(c, int(math.Round(km*float64(t.Class(c).PerKm))))
	}
	return p
}
