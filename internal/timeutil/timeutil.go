// README: Calendar helpers pinned to the service time zone (Europe/Moscow by default).
package timeutil

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	defaultZone = "Europe/Moscow"
)

var zone = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation(defaultZone)
	if err != nil {
		return time.FixedZone(defaultZone, 3*60*60)
	}
	return loc
}

// UseZone switches the service zone. Call it at startup before any goroutine reads it.
func UseZone(name string) error {
	if name == "" || name == defaultZone {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", name, err)
	}
	zone = loc
	return nil
}

// Now returns the current time in the service zone.
func Now() time.Time {
	return time.Now().In(zone)
}

func Location() *time.Location {
	return zone
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses YYYY-MM-DD as a calendar day in the service zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, zone)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
