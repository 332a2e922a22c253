//go:build unit

package commands

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

// memState is the whole fake database. Within works on a copy and swaps it in on
// success, so a failed transaction leaves nothing behind.
type memState struct {
	holds     map[uuid.UUID]*hold.BookingHold
	slotLocks map[string]slotLock
	wallets   map[uuid.UUID]int64
	entries   map[string]int64
	records   map[string][]byte
	refunds   map[uuid.UUID]shared.RefundJob
	callbacks []shared.CallbackRecord
	idem      map[string]shared.IdempotencyRecord
	rates     map[uuid.UUID]int64
}

type slotLock struct {
	holdID uuid.UUID
	booked bool
}

func newMemState() *memState {
	return &memState{
		holds:     map[uuid.UUID]*hold.BookingHold{},
		slotLocks: map[string]slotLock{},
		wallets:   map[uuid.UUID]int64{},
		entries:   map[string]int64{},
		records:   map[string][]byte{},
		refunds:   map[uuid.UUID]shared.RefundJob{},
		idem:      map[string]shared.IdempotencyRecord{},
		rates:     map[uuid.UUID]int64{},
	}
}

func cloneHold(h *hold.BookingHold) *hold.BookingHold {
	return hold.ReconstructBookingHold(
		h.ID(), h.UserID(), h.Slots(), h.AmountDue(), h.Status(),
		h.StartedAt(), h.Deadline(), h.Channel(), h.ExternalRef(), h.Captured(),
		h.Refund(), h.DeclineReason(), h.CreatedAt(), h.UpdatedAt(),
	)
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.holds {
		c.holds[k] = cloneHold(v)
	}
	for k, v := range s.slotLocks {
		c.slotLocks[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.refunds {
		c.refunds[k] = v
	}
	c.callbacks = append(c.callbacks, s.callbacks...)
	for k, v := range s.idem {
		c.idem[k] = v
	}
	for k, v := range s.rates {
		c.rates[k] = v
	}
	return c
}

type fakeUoW struct {
	mu    sync.Mutex
	state *memState
	clock clock.Clock
	// runs inside the transaction before a wallet debit when set
	onDebit func()
}

func newFakeUoW(clk clock.Clock) *fakeUoW {
	return &fakeUoW{state: newMemState(), clock: clk}
}

// Within serializes transactions, standing in for the row lock.
func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	work := u.state.clone()
	if err := fn(ctx, &fakeTx{st: work, clock: u.clock, onDebit: u.onDebit}); err != nil {
		return err
	}
	u.state = work
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeTx{st: u.state, clock: u.clock}
}

// snapshot returns a copy of the committed state for assertions.
func (u *fakeUoW) snapshot() *memState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.clone()
}

func (u *fakeUoW) seed(fn func(st *memState)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u.state)
}

// recordStore gives the hold clock direct, non-transactional access to records.
type recordStore struct{ u *fakeUoW }

func (r recordStore) InsertIfAbsent(_ context.Context, key string, value []byte) ([]byte, error) {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if v, ok := r.u.state.records[key]; ok {
		return v, nil
	}
	r.u.state.records[key] = value
	return value, nil
}

func (r recordStore) Get(_ context.Context, key string) ([]byte, error) {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	v, ok := r.u.state.records[key]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (r recordStore) Delete(_ context.Context, keys ...string) error {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	for _, k := range keys {
		delete(r.u.state.records, k)
	}
	return nil
}

func (r recordStore) ListByPrefix(_ context.Context, prefix string) ([]shared.Record, error) {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	var out []shared.Record
	for k, v := range r.u.state.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, shared.Record{Key: k, Value: v})
		}
	}
	return out, nil
}

type fakeTx struct {
	st      *memState
	clock   clock.Clock
	onDebit func()
}

func (t *fakeTx) Holds() shared.HoldRepository              { return fakeHolds{t} }
func (t *fakeTx) Slots() shared.SlotRepository              { return fakeSlots{t} }
func (t *fakeTx) Wallets() shared.WalletRepository          { return fakeWallets{t} }
func (t *fakeTx) Records() shared.RecordRepository          { return fakeRecords{t} }
func (t *fakeTx) Refunds() shared.RefundJobRepository       { return fakeRefunds{t} }
func (t *fakeTx) Callbacks() shared.CallbackRepository      { return fakeCallbacks{t} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository { return fakeIdem{t} }
func (t *fakeTx) Reads() shared.CommandReads                { return t }
func (t *fakeTx) DB() db.DBTX                               { return nil }

func (t *fakeTx) ResourceRates(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, id := range ids {
		if r, ok := t.st.rates[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (t *fakeTx) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := t.st.idem[key.String()+userID.String()]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

type fakeHolds struct{ t *fakeTx }

func (f fakeHolds) Create(_ context.Context, h *hold.BookingHold) error {
	f.t.st.holds[h.ID()] = cloneHold(h)
	return nil
}

func (f fakeHolds) GetForUpdate(_ context.Context, id uuid.UUID) (*hold.BookingHold, error) {
	h, ok := f.t.st.holds[id]
	if !ok {
		return nil, infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
	}
	return cloneHold(h), nil
}

func (f fakeHolds) FindByExternalRefForUpdate(_ context.Context, ref string) (*hold.BookingHold, error) {
	for _, h := range f.t.st.holds {
		if h.ExternalRef() == ref {
			return cloneHold(h), nil
		}
	}
	return nil, infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
}

func (f fakeHolds) Update(_ context.Context, h *hold.BookingHold) error {
	if _, ok := f.t.st.holds[h.ID()]; !ok {
		return infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
	}
	f.t.st.holds[h.ID()] = cloneHold(h)
	return nil
}

func (f fakeHolds) ListOverdue(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, h := range f.t.st.holds {
		if h.IsOverdue(now) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeSlots struct{ t *fakeTx }

func (f fakeSlots) Acquire(_ context.Context, holdID uuid.UUID, slots []hold.SlotRef) error {
	for _, s := range slots {
		if _, taken := f.t.st.slotLocks[s.Key()]; taken {
			return infra.WrapRepoErr("slot already locked", nil, infra.KindDuplicateKey)
		}
	}
	for _, s := range slots {
		f.t.st.slotLocks[s.Key()] = slotLock{holdID: holdID}
	}
	return nil
}

func (f fakeSlots) Retain(_ context.Context, holdID uuid.UUID) error {
	for k, l := range f.t.st.slotLocks {
		if l.holdID == holdID {
			f.t.st.slotLocks[k] = slotLock{holdID: holdID, booked: true}
		}
	}
	return nil
}

func (f fakeSlots) Release(_ context.Context, holdID uuid.UUID) error {
	for k, l := range f.t.st.slotLocks {
		if l.holdID == holdID {
			delete(f.t.st.slotLocks, k)
		}
	}
	return nil
}

type fakeWallets struct{ t *fakeTx }

func (f fakeWallets) Balance(_ context.Context, userID uuid.UUID) (int64, error) {
	return f.t.st.wallets[userID], nil
}

func (f fakeWallets) Debit(_ context.Context, userID, holdID uuid.UUID, amount int64) (bool, error) {
	if f.t.st.wallets[userID] < amount {
		return false, nil
	}
	key := "debit:" + holdID.String()
	if _, dup := f.t.st.entries[key]; dup {
		return false, infra.WrapRepoErr("debit already recorded", nil, infra.KindDuplicateKey)
	}
	f.t.st.wallets[userID] -= amount
	f.t.st.entries[key] = amount
	return true, nil
}

func (f fakeWallets) Refund(_ context.Context, userID, holdID uuid.UUID, amount int64) error {
	key := "refund:" + holdID.String()
	if _, dup := f.t.st.entries[key]; dup {
		return infra.WrapRepoErr("refund already recorded", nil, infra.KindDuplicateKey)
	}
	f.t.st.wallets[userID] += amount
	f.t.st.entries[key] = amount
	return nil
}

func (f fakeWallets) TopUp(_ context.Context, userID uuid.UUID, amount int64) (int64, error) {
	f.t.st.wallets[userID] += amount
	return f.t.st.wallets[userID], nil
}

type fakeRecords struct{ t *fakeTx }

func (f fakeRecords) InsertIfAbsent(_ context.Context, key string, value []byte) ([]byte, error) {
	if v, ok := f.t.st.records[key]; ok {
		return v, nil
	}
	f.t.st.records[key] = value
	return value, nil
}

func (f fakeRecords) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.t.st.records[key]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (f fakeRecords) Put(_ context.Context, key string, value []byte) error {
	f.t.st.records[key] = value
	return nil
}

func (f fakeRecords) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.t.st.records, k)
	}
	return nil
}

func (f fakeRecords) ListByPrefix(_ context.Context, prefix string) ([]shared.Record, error) {
	var out []shared.Record
	for k, v := range f.t.st.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, shared.Record{Key: k, Value: v})
		}
	}
	return out, nil
}

type fakeRefunds struct{ t *fakeTx }

func (f fakeRefunds) Enqueue(_ context.Context, job shared.RefundJob) error {
	if _, dup := f.t.st.refunds[job.HoldID]; dup {
		return infra.WrapRepoErr("refund job exists", nil, infra.KindDuplicateKey)
	}
	job.ID = uuid.New()
	job.Status = shared.RefundJobQueued
	f.t.st.refunds[job.HoldID] = job
	return nil
}

func (f fakeRefunds) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.RefundJob, error) {
	var out []shared.RefundJob
	for _, j := range f.t.st.refunds {
		if j.Status == shared.RefundJobQueued && !j.RunAt.After(now) && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f fakeRefunds) GetByHoldForUpdate(_ context.Context, holdID uuid.UUID) (*shared.RefundJob, error) {
	j, ok := f.t.st.refunds[holdID]
	if !ok {
		return nil, infra.WrapRepoErr("refund job not found", nil, infra.KindNotFound)
	}
	return &j, nil
}

func (f fakeRefunds) Lease(_ context.Context, id uuid.UUID, until time.Time) error {
	for k, j := range f.t.st.refunds {
		if j.ID == id {
			j.RunAt = until
			f.t.st.refunds[k] = j
		}
	}
	return nil
}

func (f fakeRefunds) MarkDone(_ context.Context, id uuid.UUID) error {
	for k, j := range f.t.st.refunds {
		if j.ID == id {
			j.Status = shared.RefundJobDone
			f.t.st.refunds[k] = j
		}
	}
	return nil
}

func (f fakeRefunds) MarkFailed(_ context.Context, id uuid.UUID, _ string, next time.Time, giveUp bool) error {
	for k, j := range f.t.st.refunds {
		if j.ID == id {
			j.Attempts++
			j.RunAt = next
			j.Status = shared.RefundJobQueued
			if giveUp {
				j.Status = shared.RefundJobFailed
			}
			f.t.st.refunds[k] = j
		}
	}
	return nil
}

type fakeCallbacks struct{ t *fakeTx }

func (f fakeCallbacks) Record(_ context.Context, rec shared.CallbackRecord) error {
	f.t.st.callbacks = append(f.t.st.callbacks, rec)
	return nil
}

type fakeIdem struct{ t *fakeTx }

func (f fakeIdem) TryInsert(_ context.Context, key, userID uuid.UUID, _ string, hash string, expiresAt time.Time) error {
	k := key.String() + userID.String()
	if _, ok := f.t.st.idem[k]; ok {
		return nil
	}
	f.t.st.idem[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: hash,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (f fakeIdem) UpdateStatusCompleted(_ context.Context, key, userID, holdID uuid.UUID) error {
	k := key.String() + userID.String()
	rec := f.t.st.idem[k]
	rec.Status = shared.IdempotencyCompleted
	rec.ResultHoldID = &holdID
	f.t.st.idem[k] = rec
	return nil
}

func (f fakeIdem) ClaimExpired(_ context.Context, key, userID uuid.UUID, hash string, expiresAt time.Time) (int64, error) {
	k := key.String() + userID.String()
	rec := f.t.st.idem[k]
	rec.Status = shared.IdempotencyProcessing
	rec.RequestHash = hash
	rec.ResultHoldID = nil
	rec.ExpiresAt = expiresAt
	f.t.st.idem[k] = rec
	return 1, nil
}

// fakeHoldQueries answers from committed state without lazy expiry.
type fakeHoldQueries struct {
	u     *fakeUoW
	clock clock.Clock
}

func (q fakeHoldQueries) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*queries.HoldView, error) {
	st := q.u.snapshot()
	h, ok := st.holds[id]
	if !ok {
		return nil, infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
	}
	return &queries.HoldView{
		ID:           h.ID(),
		UserID:       h.UserID(),
		Status:       string(h.Status()),
		AmountDue:    h.AmountDue().Amount(),
		HoldDeadline: h.Deadline(),
	}, nil
}

func (q fakeHoldQueries) ListByUser(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.HoldView, *queries.Cursor, error) {
	return nil, nil, nil
}

type fakeProvider struct {
	name      string
	createErr error
	refundErr error

	// runs at the start of CreatePayment when set
	onCreate func()
	// when set, Refund signals entered and waits for release
	entered chan struct{}
	release chan struct{}

	mu      sync.Mutex
	orders  []PaymentOrder
	refunds []RefundOrder
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) refundCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refunds)
}

func (p *fakeProvider) CreatePayment(_ context.Context, order PaymentOrder) (string, error) {
	if p.onCreate != nil {
		p.onCreate()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	p.orders = append(p.orders, order)
	return "https://pay.example/" + order.OrderID, nil
}

func (p *fakeProvider) Refund(_ context.Context, order RefundOrder) error {
	if p.release != nil {
		p.entered <- struct{}{}
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return p.refundErr
	}
	p.refunds = append(p.refunds, order)
	return nil
}

// tokenParser reads success/resultCode/orderId the way the generic gateway parser does.
type tokenParser struct{ name string }

func (p tokenParser) Provider() string { return p.name }

func (p tokenParser) Parse(q url.Values) (Callback, error) {
	cb := Callback{
		ExternalRef: q.Get("orderId"),
		PaymentID:   q.Get("paymentId"),
		Message:     q.Get("message"),
		Outcome:     OutcomeUnknown,
	}
	switch {
	case q.Get("success") == "true" || q.Get("resultCode") == "0":
		cb.Outcome = OutcomeSuccess
	case q.Get("success") == "false" || (q.Has("resultCode") && q.Get("resultCode") != "0"):
		cb.Outcome = OutcomeFailure
	}
	if tok, err := hold.ParseOrderToken(cb.ExternalRef); err == nil {
		id := tok.HoldID()
		cb.HoldID = &id
	}
	return cb, nil
}

// harness wires the real command layer over the fake store.
type harness struct {
	clock      *clock.MockClock
	uow        *fakeUoW
	holdClock  *holdclock.Service
	provider   *fakeProvider
	machine    *Machine
	holds      HoldCommands
	payments   PaymentCommands
	reconciler CallbackReconciler
	wallet     WalletCommands
	resourceID uuid.UUID
	userID     uuid.UUID
}

const testWindow = 300 * time.Second

func newHarness(start time.Time) *harness {
	clk := clock.NewMockClock(start)
	u := newFakeUoW(clk)
	hc := holdclock.NewService(recordStore{u}, clk)
	provider := &fakeProvider{name: "momo"}
	providers := []PaymentProvider{provider}

	cancellation := NewCancellationService(u, clk, providers, config.NewTestConfig())
	machine := NewHoldMachine(u, clk, hc, cancellation)
	services := &hold.Services{Clock: clk, Window: testWindow, MaxSlots: 8}

	h := &harness{
		clock:      clk,
		uow:        u,
		holdClock:  hc,
		provider:   provider,
		machine:    machine,
		holds:      NewHoldUseCase(u, clk, services, hc, machine, fakeHoldQueries{u: u, clock: clk}),
		payments:   NewPaymentUseCase(u, clk, machine, NewGatewayAdapter(clk, providers)),
		reconciler: NewCallbackReconciler(u, clk, machine, []CallbackParser{tokenParser{name: "momo"}}),
		wallet:     NewWalletUseCase(u),
		resourceID: uuid.New(),
		userID:     uuid.New(),
	}
	u.seed(func(st *memState) {
		st.rates[h.resourceID] = 120000
	})
	return h
}
