// README: Inline-button callback payloads, encoded and parsed in one place.
package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DataNoop            = "noop"
	DataDispatcherPhone = "dispatcher_phone"
	DataConfirm         = "order_confirm"
	DataEdit            = "order_edit"
	DataCancel          = "order_cancel"

	prefixDay        = "cal:"
	prefixNav        = "calnav:"
	prefixHour       = "th:"
	prefixMinute     = "tm:"
	prefixPassengers = "ppl:"
	prefixComment    = "cmt:"
)

type CallbackKind int

const (
	CallbackUnknown CallbackKind = iota
	CallbackNoop
	CallbackDispatcherPhone
	CallbackDay
	CallbackMonth
	CallbackHour
	CallbackMinute
	CallbackPassengers
	CallbackComment
	CallbackConfirm
	CallbackEdit
	CallbackCancel
)

// Callback is a parsed button payload. Only the fields of its Kind are set.
type Callback struct {
	Kind       CallbackKind
	Date       string
	Year       int
	Month      time.Month
	Hour       string
	Minute     string
	Passengers string
	Yes        bool
}

func DayData(t time.Time) string {
	return prefixDay + t.Format("2006-01-02")
}

func MonthData(y int, m time.Month) string {
	return fmt.Sprintf("%s%d-%02d", prefixNav, y, int(m))
}

func HourData(h int) string {
	return fmt.Sprintf("%s%02d", prefixHour, h)
}

func MinuteData(hour, minute string) string {
	return prefixMinute + hour + ":" + minute
}

func PassengersData(p string) string {
	return prefixPassengers + p
}

func CommentData(yes bool) string {
	if yes {
		return prefixComment + "yes"
	}
	return prefixComment + "no"
}

// ParseCallback never fails; malformed payloads come back as CallbackUnknown.
func ParseCallback(data string) Callback {
	switch data {
	case DataNoop:
		return Callback{Kind: CallbackNoop}
	case DataDispatcherPhone:
		return Callback{Kind: CallbackDispatcherPhone}
	case DataConfirm:
		return Callback{Kind: CallbackConfirm}
	case DataEdit:
		return Callback{Kind: CallbackEdit}
	case DataCancel:
		return Callback{Kind: CallbackCancel}
	}

	switch {
	case strings.HasPrefix(data, prefixNav):
		v := strings.TrimPrefix(data, prefixNav)
		ys, ms, ok := strings.Cut(v, "-")
		y, err1 := strconv.Atoi(ys)
		m, err2 := strconv.Atoi(ms)
		if ok && err1 == nil && err2 == nil && m >= 1 && m <= 12 {
			return Callback{Kind: CallbackMonth, Year: y, Month: time.Month(m)}
		}
	case strings.HasPrefix(data, prefixDay):
		v := strings.TrimPrefix(data, prefixDay)
		if _, err := time.Parse("2006-01-02", v); err == nil {
			return Callback{Kind: CallbackDay, Date: v}
		}
	case strings.HasPrefix(data, prefixHour):
		return Callback{Kind: CallbackHour, Hour: strings.TrimPrefix(data, prefixHour)}
	case strings.HasPrefix(data, prefixMinute):
		h, m, ok := strings.Cut(strings.TrimPrefix(data, prefixMinute), ":")
		if ok {
			return Callback{Kind: CallbackMinute, Hour: h, Minute: m}
		}
	case strings.HasPrefix(data, prefixPassengers):
		return Callback{Kind: CallbackPassengers, Passengers: strings.TrimPrefix(data, prefixPassengers)}
	case strings.HasPrefix(data, prefixComment):
		switch strings.TrimPrefix(data, prefixComment) {
		case "yes":
			return Callback{Kind: CallbackComment, Yes: true}
		case "no":
			return Callback{Kind: CallbackComment}
		}
	}
	return Callback{Kind: CallbackUnknown}
}
