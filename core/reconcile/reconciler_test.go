package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource hands out records from Fetch and lets tests push events.
type fakeSource struct {
	mu        sync.Mutex
	records   []record
	fetchErr  error
	subErr    error
	gate      chan struct{} // when set, Fetch blocks until closed
	fetches   int
	deliver   func(record)
	lost      func(error)
	closed    int
	started   chan struct{} // closed when Fetch is entered
	startOnce sync.Once
}

func newFakeSource(records ...record) *fakeSource {
	return &fakeSource{records: records, started: make(chan struct{})}
}

func (s *fakeSource) Fetch(ctx context.Context) ([]record, error) {
	s.mu.Lock()
	s.fetches++
	gate := s.gate
	s.mu.Unlock()
	s.startOnce.Do(func() { close(s.started) })

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := make([]record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeSource) Subscribe(ctx context.Context, deliver func(record), lost func(error)) (Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	s.mu.Lock()
	s.deliver = deliver
	s.lost = lost
	s.mu.Unlock()
	return &fakeSubscription{source: s}, nil
}

func (s *fakeSource) push(r record) {
	s.mu.Lock()
	deliver := s.deliver
	s.mu.Unlock()
	deliver(r)
}

type fakeSubscription struct {
	source *fakeSource
	once   sync.Once
}

func (f *fakeSubscription) Close() error {
	f.once.Do(func() {
		f.source.mu.Lock()
		f.source.closed++
		f.source.mu.Unlock()
	})
	return nil
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	fetchErr int
	lost     int
}

func (o *countingObserver) ObserveEvent(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func (o *countingObserver) ObserveFetch(err error) {
	if err != nil {
		o.mu.Lock()
		o.fetchErr++
		o.mu.Unlock()
	}
}

func (o *countingObserver) ObserveSubscriptionLost() {
	o.mu.Lock()
	o.lost++
	o.mu.Unlock()
}

func (o *countingObserver) ObserveSize(int) {}

func newReconciler(t *testing.T, src *fakeSource, policy Policy, opts ...Option[record]) *Reconciler[record] {
	t.Helper()
	r, err := New[record](adapter, src, Config{QueueSize: 8, EarlyEvents: string(policy)}, zap.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Stop() })
	return r
}

func waitFor(t *testing.T, r *Reconciler[record], want []string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, ids(r.Snapshot()))
	}, time.Second, 5*time.Millisecond, "want %v, got %v", want, ids(r.Snapshot()))
}

func ids(list []record) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestConfig_Policy(t *testing.T) {
	p, err := Config{}.Policy()
	assert.NoError(t, err)
	assert.Equal(t, PolicyReplay, p)

	p, err = Config{EarlyEvents: "overwrite"}.Policy()
	assert.NoError(t, err)
	assert.Equal(t, PolicyOverwrite, p)

	_, err = Config{EarlyEvents: "merge"}.Policy()
	assert.Error(t, err)

	_, err = New[record](adapter, newFakeSource(), Config{EarlyEvents: "merge"}, zap.NewNop())
	assert.Error(t, err)
}

func TestReconciler_Scenario(t *testing.T) {
	src := newFakeSource(record{ID: "1", Name: "Ann", City: "Pune", Public: true})
	r := newReconciler(t, src, PolicyReplay)

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, []string{"1"}, ids(r.Snapshot()))

	src.push(record{ID: "2", Name: "Bob", City: "Goa", Public: true})
	waitFor(t, r, []string{"1", "2"})

	src.push(record{ID: "1", Name: "Ann", City: "Pune", Public: false})
	waitFor(t, r, []string{"2"})

	src.push(record{ID: "2", Name: "Bobby", City: "Goa", Public: true})
	assert.Eventually(t, func() bool {
		snap := r.Snapshot()
		return len(snap) == 1 && snap[0].Name == "Bobby"
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, r.Filter("goa"), 1)
	assert.Empty(t, r.Filter("pune"))

	st := r.Status()
	assert.True(t, st.Initialized)
	assert.True(t, st.Subscribed)
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, 3, st.EventsApplied)
}

func TestReconciler_FetchErrorLeavesListEmpty(t *testing.T) {
	src := newFakeSource(record{ID: "1", Public: true})
	src.fetchErr = errors.New("network down")
	obs := &countingObserver{}
	r := newReconciler(t, src, PolicyReplay, WithObserver[record](obs))

	err := r.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "network down")
	assert.Empty(t, r.Snapshot())

	st := r.Status()
	assert.False(t, st.Initialized)
	assert.True(t, st.Subscribed, "fetch failure keeps the subscription")
	assert.Equal(t, "network down", st.LastError)
	assert.Equal(t, 1, obs.fetchErr)

	// Manual refresh recovers
	src.mu.Lock()
	src.fetchErr = nil
	src.mu.Unlock()
	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, []string{"1"}, ids(r.Snapshot()))
	assert.Empty(t, r.Status().LastError)
}

func TestReconciler_RefreshFailureKeepsList(t *testing.T) {
	src := newFakeSource(record{ID: "1", Public: true})
	r := newReconciler(t, src, PolicyReplay)
	require.NoError(t, r.Start(context.Background()))

	src.mu.Lock()
	src.fetchErr = errors.New("timeout")
	src.mu.Unlock()

	err := r.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, []string{"1"}, ids(r.Snapshot()))
}

func TestReconciler_ReplayEarlyEvents(t *testing.T) {
	src := newFakeSource(record{ID: "1", Name: "stale", Public: true}, record{ID: "2", Public: true})
	src.gate = make(chan struct{})
	obs := &countingObserver{}
	r := newReconciler(t, src, PolicyReplay, WithObserver[record](obs))

	errc := make(chan error, 1)
	go func() { errc <- r.Start(context.Background()) }()
	<-src.started

	// Arrive while the fetch is in flight
	src.push(record{ID: "1", Name: "fresh", Public: true})
	src.push(record{ID: "2", Public: false})
	src.push(record{ID: "3", Public: true})
	assert.Eventually(t, func() bool {
		obs.mu.Lock()
		defer obs.mu.Unlock()
		return obs.outcomes[OutcomeQueued] == 3
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, r.Snapshot(), "queued events are not applied before initialization")

	close(src.gate)
	require.NoError(t, <-errc)

	snap := r.Snapshot()
	assert.Equal(t, []string{"1", "3"}, ids(snap))
	assert.Equal(t, "fresh", snap[0].Name)
}

func TestReconciler_OverwriteEarlyEvents(t *testing.T) {
	src := newFakeSource(record{ID: "1", Name: "stale", Public: true})
	src.gate = make(chan struct{})
	r := newReconciler(t, src, PolicyOverwrite)

	errc := make(chan error, 1)
	go func() { errc <- r.Start(context.Background()) }()
	<-src.started

	src.push(record{ID: "1", Name: "fresh", Public: true})
	src.push(record{ID: "9", Public: true})
	waitFor(t, r, []string{"1", "9"})

	close(src.gate)
	require.NoError(t, <-errc)

	// The fetch result replaces everything received before it
	snap := r.Snapshot()
	assert.Equal(t, []string{"1"}, ids(snap))
	assert.Equal(t, "stale", snap[0].Name)
}

func TestReconciler_DropsEventsWithoutFetch(t *testing.T) {
	src := newFakeSource()
	src.fetchErr = errors.New("down")
	obs := &countingObserver{}
	r := newReconciler(t, src, PolicyReplay, WithObserver[record](obs))

	require.Error(t, r.Start(context.Background()))
	src.push(record{ID: "1", Public: true})

	assert.Eventually(t, func() bool {
		obs.mu.Lock()
		defer obs.mu.Unlock()
		return obs.outcomes[OutcomeDropped] == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, r.Snapshot())
}

func TestReconciler_Listener(t *testing.T) {
	src := newFakeSource(record{ID: "1", Public: true})
	updates := make(chan []record, 4)
	r := newReconciler(t, src, PolicyReplay, WithListener[record](func(list []record) { updates <- list }))

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, []string{"1"}, ids(<-updates))

	src.push(record{ID: "2", Public: true})
	assert.Equal(t, []string{"1", "2"}, ids(<-updates))
}

func TestReconciler_SubscriptionLost(t *testing.T) {
	src := newFakeSource()
	obs := &countingObserver{}
	r := newReconciler(t, src, PolicyReplay, WithObserver[record](obs))
	require.NoError(t, r.Start(context.Background()))

	src.lost(errors.New("socket closed"))

	st := r.Status()
	assert.False(t, st.Subscribed)
	assert.Equal(t, "socket closed", st.LastError)
	assert.Equal(t, 1, obs.lost)
}

func TestReconciler_SubscribeError(t *testing.T) {
	src := newFakeSource()
	src.subErr = errors.New("forbidden")
	r := newReconciler(t, src, PolicyReplay)

	err := r.Start(context.Background())
	assert.ErrorContains(t, err, "forbidden")
	assert.ErrorIs(t, r.Refresh(context.Background()), ErrStopped)
}

func TestReconciler_Lifecycle(t *testing.T) {
	src := newFakeSource()
	r := newReconciler(t, src, PolicyReplay)

	assert.ErrorIs(t, r.Refresh(context.Background()), ErrNotStarted)

	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyStarted)

	assert.NoError(t, r.Stop())
	assert.NoError(t, r.Stop())
	assert.Equal(t, 1, src.closed, "subscription released exactly once")
	assert.False(t, r.Status().Subscribed)
	assert.ErrorIs(t, r.Refresh(context.Background()), ErrStopped)

	// Delivery after stop must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			src.push(record{ID: "x", Public: true})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after Stop")
	}
}

func TestReconciler_StopBeforeStart(t *testing.T) {
	r := newReconciler(t, newFakeSource(), PolicyReplay)
	assert.NoError(t, r.Stop())
	assert.ErrorIs(t, r.Start(context.Background()), ErrStopped)
}
