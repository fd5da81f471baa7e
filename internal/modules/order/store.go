// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transferair/internal/modules/pricing"
	"transferair/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	var economy, sedan, minivan *int
	var source *string
	var distanceKm *float64
	if o.Quote != nil {
		economy, sedan, minivan = &o.Quote.Prices.Economy, &o.Quote.Prices.Sedan, &o.Quote.Prices.Minivan
		src := string(o.Quote.Source)
		source = &src
		distanceKm = o.Quote.DistanceKm
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO transfer_orders (
            id, chat_id, user_id, user_name, username,
            origin, destination, pickup_date, pickup_time, passengers,
            phone, comment, price_economy, price_sedan, price_minivan,
            price_source, distance_km, status, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15,
            $16, $17, $18, $19
        )`,
		string(o.ID), o.Customer.ChatID, o.Customer.UserID, o.Customer.Name, o.Customer.Username,
		o.Origin, o.Destination, o.Date, o.Time, o.Passengers,
		o.Phone, o.Comment, economy, sedan, minivan,
		source, distanceKm, string(o.Status), o.CreatedAt,
	)
	return err
}

func (s *Store) MarkNotified(ctx context.Context, id types.ID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE transfer_orders
        SET status = $1, notified_at = $2
        WHERE id = $3`,
		string(StatusNotified), at, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, chat_id, user_id, user_name, username,
               origin, destination, pickup_date, pickup_time, passengers,
               phone, comment, price_economy, price_sedan, price_minivan,
               price_source, distance_km, status, created_at, notified_at
        FROM transfer_orders
        WHERE id = $1`, string(id),
	)

	var o Order
	var economy, sedan, minivan *int
	var source *string
	var distanceKm *float64
	err := row.Scan(
		&o.ID, &o.Customer.ChatID, &o.Customer.UserID, &o.Customer.Name, &o.Customer.Username,
		&o.Origin, &o.Destination, &o.Date, &o.Time, &o.Passengers,
		&o.Phone, &o.Comment, &economy, &sedan, &minivan,
		&source, &distanceKm, &o.Status, &o.CreatedAt, &o.NotifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if economy != nil && sedan != nil && minivan != nil && source != nil {
		o.Quote = &pricing.Quote{
			Prices:     pricing.Prices{Economy: *economy, Sedan: *sedan, Minivan: *minivan},
			Source:     pricing.Source(*source),
			DistanceKm: distanceKm,
		}
	}
	return &o, nil
}
