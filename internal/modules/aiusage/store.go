package aiusage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles ai_usage persistence.
type Store struct {
	db     *pgxpool.Pool
	tokens int
}

// NewStore returns a Store granting tokens per chat and month.
func NewStore(db *pgxpool.Pool, tokens int) *Store {
	if tokens <= 0 {
		tokens = DefaultTokens
	}
	return &Store{db: db, tokens: tokens}
}

// UseToken atomically checks the monthly quota and deducts one token.
// The counter is refilled when last_reset_month is behind month.
// Returns ErrInsufficientTokens when no row is updated (quota exhausted or chat absent).
func (s *Store) UseToken(ctx context.Context, chatID int64, month string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE chat_id = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, month, s.tokens, chatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureChat inserts a full allowance for chatID unless a row exists.
func (s *Store) EnsureChat(ctx context.Context, chatID int64, month string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (chat_id, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO NOTHING
	`, chatID, s.tokens, month)
	return err
}
