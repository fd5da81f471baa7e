// README: Order draft steps, submitted order aggregate and status definitions.
package order

import (
	"time"

	"transferair/internal/modules/pricing"
	"transferair/internal/types"
)

// Step is the position of a chat in the calculator or order dialogue.
type Step string

const (
	StepIdle            Step = "idle"
	StepCalcOrigin      Step = "calc_origin"
	StepCalcDestination Step = "calc_destination"
	StepOrigin          Step = "origin"
	StepDestination     Step = "destination"
	StepDate            Step = "date"
	StepHour            Step = "hour"
	StepMinute          Step = "minute"
	StepPassengers      Step = "passengers"
	StepPhone           Step = "phone"
	StepAskComment      Step = "ask_comment"
	StepComment         Step = "comment"
	StepConfirm         Step = "confirm"
)

// AllowedTransitions represents the dialogue flow (diagram) as code.
// Returning to the menu is a Reset, not a transition.
var AllowedTransitions = map[Step][]Step{
	StepIdle:            {StepCalcOrigin, StepOrigin},
	StepCalcOrigin:      {StepCalcDestination},
	StepCalcDestination: {StepIdle},
	StepOrigin:          {StepDestination},
	StepDestination:     {StepDate},
	StepDate:            {StepHour},
	StepHour:            {StepMinute},
	StepMinute:          {StepPassengers},
	StepPassengers:      {StepPhone},
	StepPhone:           {StepAskComment},
	StepAskComment:      {StepComment, StepConfirm},
	StepComment:         {StepConfirm},
	StepConfirm:         {StepIdle, StepOrigin},
}

func CanTransition(from, to Step) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Draft collects answers while the user walks through the order steps.
type Draft struct {
	Origin      string
	Destination string
	Date        string
	Hour        string
	Time        string
	Passengers  string
	Phone       string
	Comment     string
	Quote       *pricing.Quote
}

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusNotified  Status = "notified"
)

type Customer struct {
	ChatID   int64
	UserID   int64
	Name     string
	Username string
}

type Order struct {
	ID          types.ID
	Customer    Customer
	Origin      string
	Destination string
	Date        string
	Time        string
	Passengers  string
	Phone       string
	Comment     string
	Quote       *pricing.Quote
	Status      Status
	CreatedAt   time.Time
	NotifiedAt  *time.Time
}

// FromDraft copies the collected answers into a new order.
func FromDraft(d Draft, c Customer) *Order {
	return &Order{
		Customer:    c,
		Origin:      d.Origin,
		Destination: d.Destination,
		Date:        d.Date,
		Time:        d.Time,
		Passengers:  d.Passengers,
		Phone:       d.Phone,
		Comment:     d.Comment,
		Quote:       d.Quote,
	}
}
