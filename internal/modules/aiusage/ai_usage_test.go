// README: AI-usage module tests (lazy reset and quota boundary logic).
package aiusage

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// memoryStore mirrors the SQL semantics of Store for tests without Postgres.
type memoryStore struct {
	tokens int
	rows   map[int64]*memoryRow
}

type memoryRow struct {
	remaining int
	month     string
}

func newMemoryStore(tokens int) *memoryStore {
	return &memoryStore{tokens: tokens, rows: make(map[int64]*memoryRow)}
}

func (m *memoryStore) UseToken(_ context.Context, chatID int64, month string) error {
	r, ok := m.rows[chatID]
	if !ok || (r.month >= month && r.remaining <= 0) {
		return ErrInsufficientTokens
	}
	if r.month != month {
		r.remaining = m.tokens
		r.month = month
	}
	r.remaining--
	return nil
}

func (m *memoryStore) EnsureChat(_ context.Context, chatID int64, month string) error {
	if _, ok := m.rows[chatID]; !ok {
		m.rows[chatID] = &memoryRow{remaining: m.tokens, month: month}
	}
	return nil
}

func newMemoryService(tokens int, now time.Time) (*Service, *memoryStore) {
	store := newMemoryStore(tokens)
	return &Service{store: store, now: func() time.Time { return now }}, store
}

func TestUseTokenFirstUseInitialises(t *testing.T) {
	svc, store := newMemoryService(3, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	if err := svc.UseToken(context.Background(), 42); err != nil {
		t.Fatalf("UseToken: %v", err)
	}
	if got := store.rows[42].remaining; got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}
}

func TestUseTokenExhaustsQuota(t *testing.T) {
	svc, _ := newMemoryService(2, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := svc.UseToken(ctx, 7); err != nil {
			t.Fatalf("use %d: %v", i, err)
		}
	}
	if err := svc.UseToken(ctx, 7); !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}
}

func TestUseTokenMonthlyReset(t *testing.T) {
	svc, store := newMemoryService(2, time.Date(2026, 11, 1, 0, 5, 0, 0, time.UTC))
	store.rows[7] = &memoryRow{remaining: 0, month: "2026-10"}
	if err := svc.UseToken(context.Background(), 7); err != nil {
		t.Fatalf("UseToken after month change: %v", err)
	}
	if r := store.rows[7]; r.remaining != 1 || r.month != "2026-11" {
		t.Fatalf("row = %+v", r)
	}
}

// TestStoreCrossMonthReset verifies that a chat with 0 tokens left from a previous month
// is automatically reset and the request succeeds.
func TestStoreCrossMonthReset(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	if _, err := db.Exec(ctx, "INSERT INTO ai_usage VALUES (1001, 0, '2000-01')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.UseToken(ctx, 1001, "2026-10"); err != nil {
		t.Fatalf("UseToken after cross-month reset: %v", err)
	}

	var remaining int
	if err := db.QueryRow(ctx, "SELECT tokens_remaining FROM ai_usage WHERE chat_id = 1001").Scan(&remaining); err != nil {
		t.Fatalf("query: %v", err)
	}
	if remaining != DefaultTokens-1 {
		t.Fatalf("expected %d tokens remaining, got %d", DefaultTokens-1, remaining)
	}
}

// TestServiceNewChat verifies that a chat absent from the table is initialised on first call.
func TestServiceNewChat(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	if err := NewService(store).UseToken(ctx, 1002); err != nil {
		t.Fatalf("UseToken for new chat: %v", err)
	}
	var remaining int
	if err := db.QueryRow(ctx, "SELECT tokens_remaining FROM ai_usage WHERE chat_id = 1002").Scan(&remaining); err != nil {
		t.Fatalf("query: %v", err)
	}
	if remaining != DefaultTokens-1 {
		t.Fatalf("expected %d tokens remaining after first use, got %d", DefaultTokens-1, remaining)
	}
}

func TestStoreExhausted(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	if _, err := db.Exec(ctx, "INSERT INTO ai_usage VALUES (1003, 0, '2026-10')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.UseToken(ctx, 1003, "2026-10"); !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}
}

// setupTestStore creates a postgres-backed Store. It skips the test when
// TRANSFER_TEST_DSN is not set.
func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TRANSFER_TEST_DSN")
	if dsn == "" {
		t.Skip("TRANSFER_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE ai_usage"); err != nil {
		t.Fatalf("truncate ai_usage: %v", err)
	}
	return NewStore(db, DefaultTokens), db
}

func applyMigrations(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	for _, name := range []string{"0001_init.sql", "0002_ai_usage.sql"} {
		content, err := os.ReadFile(filepath.Join(root, "migrations", name))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQL(stripSQLComments(string(content))) {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
