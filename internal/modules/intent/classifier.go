// README: Contract for an optional free-text classifier used when no button matches.
package intent

import "context"

// Guess is a classifier's reading of a free-text message.
type Guess struct {
	Kind        Kind
	Origin      string
	Destination string
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Guess, error)
}
