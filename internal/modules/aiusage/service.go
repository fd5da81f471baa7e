package aiusage

import (
	"context"
	"time"

	"transferair/internal/timeutil"
)

type quotaStore interface {
	UseToken(ctx context.Context, chatID int64, month string) error
	EnsureChat(ctx context.Context, chatID int64, month string) error
}

// Service orchestrates AI token-usage logic.
type Service struct {
	store quotaStore
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{store: store, now: timeutil.Now}
}

// UseToken deducts one token from the chat's monthly allowance. A chat seen for
// the first time is initialised and the token is consumed right away.
func (s *Service) UseToken(ctx context.Context, chatID int64) error {
	month := s.now().Format("2006-01")
	err := s.store.UseToken(ctx, chatID, month)
	if err != ErrInsufficientTokens {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureChat(ctx, chatID, month); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, chatID, month)
}
