// README: Fixed fares stored in PostgreSQL as an alternative to the fares file.
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListFares(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
        SELECT name, economy, sedan, minivan
        FROM fixed_fares
        ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Name, &e.Prices.Economy, &e.Prices.Sedan, &e.Prices.Minivan)
		return e, err
	})
}

// ReplaceFares swaps the whole table in one transaction.
func (s *Store) ReplaceFares(ctx context.Context, entries []Entry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fixed_fares`); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
            INSERT INTO fixed_fares (name, economy, sedan, minivan, updated_at)
            VALUES ($1, $2, $3, $4, NOW())`,
			e.Name, e.Prices.Economy, e.Prices.Sedan, e.Prices.Minivan)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LoadTableFromStore overlays database fares on base, keeping its classes and aliases.
func LoadTableFromStore(ctx context.Context, base *Table, store *Store) (*Table, error) {
	entries, err := store.ListFares(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fares: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: fixed_fares is empty", ErrInvalidTable)
	}
	return base.WithFares(entries)
}
