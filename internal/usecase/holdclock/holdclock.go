// Package holdclock owns the per-hold countdown. The start instant is persisted once
// and every remaining-time answer is derived from it, so a restarted process
// reports the same deadline the previous one did.
package holdclock

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	StartKeyPrefix   = "payment_start_time_"
	PendingKeyPrefix = "pending_booking_"
)

var (
	ErrNotStarted    = errs.New("hold clock not started")
	ErrInvalidRecord = errs.New("hold clock record is unreadable")
)

func StartKey(holdID uuid.UUID) string   { return StartKeyPrefix + holdID.String() }
func PendingKey(holdID uuid.UUID) string { return PendingKeyPrefix + holdID.String() }

// ExpireFunc is invoked once the window of holdID has run out.
type ExpireFunc func(ctx context.Context, holdID uuid.UUID)

type HoldClock interface {
	Start(ctx context.Context, holdID uuid.UUID, window time.Duration) (time.Time, error)
	Remaining(ctx context.Context, holdID uuid.UUID) (time.Duration, error)
	OnExpire(ctx context.Context, holdID uuid.UUID, fn ExpireFunc) error
	Cancel(ctx context.Context, holdID uuid.UUID) error
	Rearm(ctx context.Context, fn ExpireFunc) (int, error)
}

// Store is the durable record store; shared.RecordRepository satisfies it.
type Store interface {
	InsertIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	ListByPrefix(ctx context.Context, prefix string) ([]shared.Record, error)
}

// Record is the persisted value under StartKey.
type Record struct {
	StartedAt time.Time `json:"started_at"`
	WindowMS  int64     `json:"window_ms"`
}

func NewRecord(startedAt time.Time, window time.Duration) Record {
	return Record{StartedAt: startedAt.UTC(), WindowMS: window.Milliseconds()}
}

func (r Record) Deadline() time.Time {
	return r.StartedAt.Add(time.Duration(r.WindowMS) * time.Millisecond)
}

func (r Record) Encode() []byte {
	b, _ := json.Marshal(r)
	return b
}

func DecodeRecord(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, errs.Mark(err, ErrInvalidRecord)
	}
	if r.StartedAt.IsZero() || r.WindowMS <= 0 {
		return Record{}, ErrInvalidRecord
	}
	return r, nil
}

type armed struct {
	timer clock.Timer
	gen   uint64
}

type Service struct {
	store Store
	clock clock.Clock

	mu     sync.Mutex
	timers map[uuid.UUID]armed
	gen    uint64
}

func NewService(store Store, clk clock.Clock) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		timers: make(map[uuid.UUID]armed),
	}
}

// Start persists the start instant unless one exists and returns the stored instant.
func (s *Service) Start(ctx context.Context, holdID uuid.UUID, window time.Duration) (time.Time, error) {
	if window <= 0 {
		return time.Time{}, errs.New("hold window must be positive")
	}
	stored, err := s.store.InsertIfAbsent(ctx, StartKey(holdID), NewRecord(s.clock.Now(), window).Encode())
	if err != nil {
		return time.Time{}, errs.Wrap(err, "persist hold clock")
	}
	rec, err := DecodeRecord(stored)
	if err != nil {
		return time.Time{}, err
	}
	return rec.StartedAt, nil
}

func (s *Service) Remaining(ctx context.Context, holdID uuid.UUID) (time.Duration, error) {
	rec, err := s.load(ctx, holdID)
	if err != nil {
		return 0, err
	}
	return s.remaining(rec), nil
}

// OnExpire arms the single timer for holdID, replacing any earlier one. When the
// window has already run out fn runs before OnExpire returns.
func (s *Service) OnExpire(ctx context.Context, holdID uuid.UUID, fn ExpireFunc) error {
	rec, err := s.load(ctx, holdID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if prev, ok := s.timers[holdID]; ok {
		if prev.timer != nil {
			prev.timer.Stop()
		}
		delete(s.timers, holdID)
	}
	d := s.remaining(rec)
	if d <= 0 {
		s.mu.Unlock()
		fn(context.WithoutCancel(ctx), holdID)
		return nil
	}
	s.gen++
	gen := s.gen
	fireCtx := context.WithoutCancel(ctx)
	// register before arming; a MockClock may fire inside AfterFunc
	s.timers[holdID] = armed{gen: gen}
	s.mu.Unlock()

	timer := s.clock.AfterFunc(d, func() {
		if !s.claim(holdID, gen) {
			return
		}
		fn(fireCtx, holdID)
	})

	s.mu.Lock()
	if cur, ok := s.timers[holdID]; ok && cur.gen == gen {
		cur.timer = timer
		s.timers[holdID] = cur
	}
	s.mu.Unlock()
	return nil
}

// claim drops the timer entry if it still belongs to generation gen.
func (s *Service) claim(holdID uuid.UUID, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.timers[holdID]
	if !ok || cur.gen != gen {
		return false
	}
	delete(s.timers, holdID)
	return true
}

// Cancel stops the timer and removes the persisted start. Calling it twice is harmless.
func (s *Service) Cancel(ctx context.Context, holdID uuid.UUID) error {
	s.mu.Lock()
	if cur, ok := s.timers[holdID]; ok {
		if cur.timer != nil {
			cur.timer.Stop()
		}
		delete(s.timers, holdID)
	}
	s.mu.Unlock()

	if err := s.store.Delete(ctx, StartKey(holdID)); err != nil {
		return errs.Wrap(err, "delete hold clock")
	}
	return nil
}

// Rearm restores a timer for every persisted clock. Unreadable records are skipped.
func (s *Service) Rearm(ctx context.Context, fn ExpireFunc) (int, error) {
	records, err := s.store.ListByPrefix(ctx, StartKeyPrefix)
	if err != nil {
		return 0, errs.Wrap(err, "list hold clocks")
	}

	armedCount := 0
	for _, r := range records {
		holdID, err := uuid.Parse(strings.TrimPrefix(r.Key, StartKeyPrefix))
		if err != nil {
			slog.Warn("skipping hold clock with malformed key", "key", r.Key)
			continue
		}
		if err := s.OnExpire(ctx, holdID, fn); err != nil {
			slog.Warn("failed to re-arm hold clock", "hold_id", holdID, "error", err)
			continue
		}
		armedCount++
	}
	return armedCount, nil
}

// Armed reports whether a timer is currently pending for holdID.
func (s *Service) Armed(holdID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[holdID]
	return ok
}

func (s *Service) load(ctx context.Context, holdID uuid.UUID) (Record, error) {
	raw, err := s.store.Get(ctx, StartKey(holdID))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return Record{}, ErrNotStarted
		}
		return Record{}, errs.Wrap(err, "load hold clock")
	}
	return DecodeRecord(raw)
}

func (s *Service) remaining(rec Record) time.Duration {
	if d := rec.Deadline().Sub(s.clock.Now()); d > 0 {
		return d
	}
	return 0
}
