// README: Monthly allowance of free-text classifications per chat.
package aiusage

import "errors"

// ErrInsufficientTokens is returned when a chat has no tokens remaining for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of classifications granted per chat per month.
const DefaultTokens = 100
