//go:build unit

package holdclock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) InsertIfAbsent(_ context.Context, key string, value []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	m.data[key] = value
	return value, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) ListByPrefix(_ context.Context, prefix string) ([]shared.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shared.Record
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, shared.Record{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type firedLog struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (f *firedLog) fn(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
}

func (f *firedLog) count(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, got := range f.ids {
		if got == id {
			n++
		}
	}
	return n
}

type HoldClockTestSuite struct {
	suite.Suite
	ctx    context.Context
	t0     time.Time
	clock  *clock.MockClock
	store  *memStore
	svc    *Service
	fired  *firedLog
	holdID uuid.UUID
}

func (s *HoldClockTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.t0 = time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.t0)
	s.store = newMemStore()
	s.svc = NewService(s.store, s.clock)
	s.fired = &firedLog{}
	s.holdID = uuid.New()
}

func (s *HoldClockTestSuite) TestStart_FirstWriterWins() {
	started, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.True(started.Equal(s.t0))

	// a reload two minutes later must not reset the clock
	s.clock.Add(2 * time.Minute)
	again, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.True(again.Equal(s.t0))

	remaining, err := s.svc.Remaining(s.ctx, s.holdID)
	s.Require().NoError(err)
	s.Equal(3*time.Minute, remaining)
}

func (s *HoldClockTestSuite) TestStart_RejectsNonPositiveWindow() {
	_, err := s.svc.Start(s.ctx, s.holdID, 0)
	s.Error(err)
}

func (s *HoldClockTestSuite) TestRemaining_ClampedAtZero() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)

	s.clock.Add(10 * time.Minute)

	remaining, err := s.svc.Remaining(s.ctx, s.holdID)
	s.Require().NoError(err)
	s.Zero(remaining)
}

func (s *HoldClockTestSuite) TestRemaining_NotStarted() {
	_, err := s.svc.Remaining(s.ctx, s.holdID)
	s.ErrorIs(err, ErrNotStarted)
}

func (s *HoldClockTestSuite) TestOnExpire_FiresAtDeadline() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))

	s.clock.Add(5*time.Minute - time.Second)
	s.Equal(0, s.fired.count(s.holdID))
	s.True(s.svc.Armed(s.holdID))

	s.clock.Add(time.Second)
	s.Equal(1, s.fired.count(s.holdID))
	s.False(s.svc.Armed(s.holdID))
}

func (s *HoldClockTestSuite) TestOnExpire_OverdueRunsImmediately() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.clock.Add(6 * time.Minute)

	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))

	s.Equal(1, s.fired.count(s.holdID))
	s.Equal(0, s.clock.PendingTimers())
}

func (s *HoldClockTestSuite) TestOnExpire_RearmingReplacesTimer() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))
	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))
	s.Equal(1, s.clock.PendingTimers())

	s.clock.Add(5 * time.Minute)
	s.Equal(1, s.fired.count(s.holdID))
}

func (s *HoldClockTestSuite) TestOnExpire_NotStarted() {
	err := s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn)
	s.ErrorIs(err, ErrNotStarted)
}

func (s *HoldClockTestSuite) TestCancel_StopsTimerAndRemovesRecord() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))

	s.Require().NoError(s.svc.Cancel(s.ctx, s.holdID))
	s.Require().NoError(s.svc.Cancel(s.ctx, s.holdID))

	s.clock.Add(10 * time.Minute)
	s.Equal(0, s.fired.count(s.holdID))
	_, err = s.svc.Remaining(s.ctx, s.holdID)
	s.ErrorIs(err, ErrNotStarted)
}

func (s *HoldClockTestSuite) TestRestart_RemainingIsUnchanged() {
	_, err := s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.OnExpire(s.ctx, s.holdID, s.fired.fn))
	s.clock.Add(2 * time.Minute)

	before, err := s.svc.Remaining(s.ctx, s.holdID)
	s.Require().NoError(err)

	// new process: same durable store, no in-memory timers
	restarted := NewService(s.store, s.clock)
	after, err := restarted.Remaining(s.ctx, s.holdID)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.False(restarted.Armed(s.holdID))
}

func (s *HoldClockTestSuite) TestRearm_RestoresTimersAndExpiresOverdue() {
	overdue := uuid.New()
	_, err := s.svc.Start(s.ctx, overdue, time.Minute)
	s.Require().NoError(err)
	_, err = s.svc.Start(s.ctx, s.holdID, 5*time.Minute)
	s.Require().NoError(err)
	s.store.data["payment_start_time_not-a-uuid"] = []byte(`{}`)

	s.clock.Add(2 * time.Minute)
	restarted := NewService(s.store, s.clock)

	n, err := restarted.Rearm(s.ctx, s.fired.fn)

	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(1, s.fired.count(overdue))
	s.Equal(0, s.fired.count(s.holdID))
	s.True(restarted.Armed(s.holdID))

	s.clock.Add(3 * time.Minute)
	s.Equal(1, s.fired.count(s.holdID))
}

func TestHoldClockTestSuite(t *testing.T) {
	suite.Run(t, new(HoldClockTestSuite))
}

func TestRecord(t *testing.T) {
	start := time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)
	rec, err := DecodeRecord(NewRecord(start, 5*time.Minute).Encode())
	require.NoError(t, err)
	assert.True(t, rec.Deadline().Equal(start.Add(5*time.Minute)))

	_, err = DecodeRecord([]byte(`{"started_at":"2030-05-31T10:00:00Z"}`))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = DecodeRecord([]byte(`nope`))
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7d3c0f8e-1b2a-4c5d-8e9f-0a1b2c3d4e5f")
	assert.Equal(t, "payment_start_time_7d3c0f8e-1b2a-4c5d-8e9f-0a1b2c3d4e5f", StartKey(id))
	assert.Equal(t, "pending_booking_7d3c0f8e-1b2a-4c5d-8e9f-0a1b2c3d4e5f", PendingKey(id))
}
