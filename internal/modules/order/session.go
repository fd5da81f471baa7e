// README: Per-chat dialogue sessions kept in memory with a per-chat lock.
package order

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Session struct {
	ChatID    int64
	Step      Step
	Draft     Draft
	UpdatedAt time.Time
}

// Advance moves the session to step if the flow allows it.
func (s *Session) Advance(to Step) error {
	if !CanTransition(s.Step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStep, s.Step, to)
	}
	s.Step = to
	return nil
}

// Reset returns to the menu and forgets the draft.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Draft = Draft{}
}

type slot struct {
	mu      sync.Mutex
	session Session
	evicted bool
}

// Sessions serializes work per chat; different chats never block each other.
type Sessions struct {
	mu    sync.Mutex
	slots map[int64]*slot
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{slots: make(map[int64]*slot), ttl: ttl, now: time.Now}
}

func (s *Sessions) slotFor(chatID int64) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[chatID]
	if !ok {
		sl = &slot{session: Session{ChatID: chatID, Step: StepIdle}}
		s.slots[chatID] = sl
	}
	return sl
}

// lock returns the chat's live slot, locked. A slot evicted between lookup
// and locking is skipped.
func (s *Sessions) lock(chatID int64) *slot {
	for {
		sl := s.slotFor(chatID)
		sl.mu.Lock()
		if !sl.evicted {
			return sl
		}
		sl.mu.Unlock()
	}
}

// With runs fn while holding the chat's lock. Changes fn makes to the session are kept.
func (s *Sessions) With(chatID int64, fn func(*Session) error) error {
	sl := s.lock(chatID)
	defer sl.mu.Unlock()
	err := fn(&sl.session)
	sl.session.UpdatedAt = s.now()
	return err
}

// Snapshot returns a copy of the chat's session.
func (s *Sessions) Snapshot(chatID int64) Session {
	sl := s.lock(chatID)
	defer sl.mu.Unlock()
	return sl.session
}

// Sweep drops sessions untouched for longer than the TTL and returns how many went.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sl := range s.slots {
		if !sl.mu.TryLock() {
			continue
		}
		if sl.session.UpdatedAt.Before(cutoff) {
			sl.evicted = true
			delete(s.slots, id)
			n++
		}
		sl.mu.Unlock()
	}
	return n
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// RunSweeper periodically evicts abandoned sessions until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
