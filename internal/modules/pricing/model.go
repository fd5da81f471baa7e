// README: Vehicle classes, price triples and the fare quote returned to callers.
package pricing

type VehicleClass string

const (
	Economy VehicleClass = "economy"
	Sedan   VehicleClass = "sedan"
	Minivan VehicleClass = "minivan"
)

// Classes lists every vehicle class in display order.
var Classes = []VehicleClass{Economy, Sedan, Minivan}

type ClassInfo struct {
	Title string
	PerKm int
}

type Prices struct {
	Economy int `json:"economy"`
	Sedan   int `json:"sedan"`
	Minivan int `json:"minivan"`
}

func (p Prices) For(c VehicleClass) int {
	switch c {
	case Economy:
		return p.Economy
	case Sedan:
		return p.Sedan
	case Minivan:
		return p.Minivan
	}
	return 0
}

func (p *Prices) set(c VehicleClass, v int) {
	switch c {
	case Economy:
		p.Economy = v
	case Sedan:
		p.Sedan = v
	case Minivan:
		p.Minivan = v
	}
}

type Source string

const (
	SourceFixed    Source = "fixed"
	SourceDistance Source = "distance"
)

// Quote is the outcome of resolving a route. DistanceKm is nil for fixed fares.
type Quote struct {
	Prices     Prices   `json:"prices"`
	Source     Source   `json:"source"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Method     string   `json:"method,omitempty"`
	Matched    string   `json:"matched,omitempty"`
}

// Entry is one row of the fixed fare table.
type Entry struct {
	Name   string
	Prices Prices
}
