// README: Order service validates a finished draft, persists it and notifies the dispatcher.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"transferair/internal/types"
)

var (
	ErrInvalidStep  = errors.New("invalid step transition")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrPastDate     = errors.New("date is in the past")
	ErrNotFound     = errors.New("order not found")
)

// Repository persists submitted orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	MarkNotified(ctx context.Context, id types.ID, at time.Time) error
}

// Notifier delivers a submitted order to the dispatcher.
type Notifier interface {
	NotifyOrder(ctx context.Context, o *Order) error
}

type Service struct {
	store    Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the order service. store and notifier may be nil; without
// a store orders live only in the dispatcher chat.
func NewService(store Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) validate(o *Order) error {
	if o.Customer.ChatID == 0 || o.Origin == "" || o.Destination == "" || o.Date == "" || o.Time == "" {
		return ErrBadRequest
	}
	if !ValidPassengers(o.Passengers) {
		return fmt.Errorf("%w: passengers %q", ErrBadRequest, o.Passengers)
	}
	if !ValidPhone(o.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Submit assigns an ID, stores the order and notifies the dispatcher.
// Notification failures are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, o *Order) error {
	if err := s.validate(o); err != nil {
		return err
	}
	o.ID = types.ID(uuid.NewString())
	o.Status = StatusSubmitted
	o.CreatedAt = s.now()

	if s.store != nil {
		if err := s.store.Create(ctx, o); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
	}

	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.NotifyOrder(ctx, o); err != nil {
		s.logger.Warn("failed to notify dispatcher", zap.String("order_id", string(o.ID)), zap.Error(err))
		return nil
	}
	at := s.now()
	o.Status = StatusNotified
	o.NotifiedAt = &at
	if s.store != nil {
		if err := s.store.MarkNotified(ctx, o.ID, at); err != nil {
			s.logger.Warn("failed to mark order notified", zap.String("order_id", string(o.ID)), zap.Error(err))
		}
	}
	return nil
}
