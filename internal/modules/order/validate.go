// README: Input checks for the order dialogue.
package order

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"transferair/internal/timeutil"
)

var phonePattern = regexp.MustCompile(`^\+?\d[\d\-\s]{8,}$`)

// PassengerOptions are the passenger counts offered to the user.
var PassengerOptions = []string{"1", "2", "3", "4", "5", "6", "7+"}

// MinuteOptions are the selectable minutes of the pickup time.
var MinuteOptions = []string{"00", "15", "30", "45"}

func ValidPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

func ValidPassengers(s string) bool {
	for _, p := range PassengerOptions {
		if s == p {
			return true
		}
	}
	return false
}

// ValidHour accepts two-digit hours 00..23.
func ValidHour(s string) bool {
	if len(s) != 2 {
		return false
	}
	h, err := strconv.Atoi(s)
	return err == nil && h >= 0 && h <= 23
}

func ValidMinute(s string) bool {
	for _, m := range MinuteOptions {
		if s == m {
			return true
		}
	}
	return false
}

// CheckDate parses an ISO date and rejects days before today in Moscow.
func CheckDate(iso string, now time.Time) (time.Time, error) {
	d, err := timeutil.ParseDate(iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrBadRequest, iso)
	}
	if d.Before(timeutil.Day(now.In(timeutil.Location()))) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPastDate, iso)
	}
	return d, nil
}

// NormalizeComment treats a lone "-" as "no comment".
func NormalizeComment(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}
