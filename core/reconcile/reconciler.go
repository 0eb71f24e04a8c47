package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Reconciler keeps an ordered list of visible records consistent with a
// remote store through one bulk fetch and a stream of change events.
//
// Every mutation happens on a single consumer goroutine fed by a bounded
// channel, so events are applied one at a time in delivery order. Readers
// get copies through Snapshot and Filter.
type Reconciler[T any] struct {
	adapter  Adapter[T]
	source   Source[T]
	logger   *zap.Logger
	policy   Policy
	observer Observer
	listener func([]T)

	events   chan T
	commands chan command[T]
	stop     chan struct{}
	done     chan struct{}

	refreshes singleflight.Group
	startOnce sync.Once
	stopOnce  sync.Once

	mu      sync.RWMutex
	list    []T
	status  Status
	sub     Subscription
	running bool
	stopped bool

	// Owned by the consumer loop.
	initialized bool
	fetching    bool
	pending     []T
}

type commandKind int

const (
	commandBegin commandKind = iota
	commandComplete
)

type command[T any] struct {
	kind    commandKind
	records []T
	err     error
	ack     chan struct{}
}

// Option configures a Reconciler.
type Option[T any] func(*Reconciler[T])

// WithObserver reports measurements to o.
func WithObserver[T any](o Observer) Option[T] {
	return func(r *Reconciler[T]) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithListener calls fn with a copy of the list after every mutation.
// fn runs on the consumer goroutine and must not block.
func WithListener[T any](fn func([]T)) Option[T] {
	return func(r *Reconciler[T]) {
		r.listener = fn
	}
}

// New creates a reconciler. It does nothing until Start is called.
func New[T any](adapter Adapter[T], source Source[T], cfg Config, logger *zap.Logger, opts ...Option[T]) (*Reconciler[T], error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	r := &Reconciler[T]{
		adapter:  adapter,
		source:   source,
		logger:   logger,
		policy:   policy,
		observer: nopObserver{},
		events:   make(chan T, queueSize),
		commands: make(chan command[T]),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		list:     []T{},
	}
	r.status.Policy = policy

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Start subscribes to change events, starts the consumer loop and performs
// the initial bulk fetch.
//
// A subscription failure stops the reconciler and is returned. A fetch
// failure is returned wrapped in ErrFetch while the reconciler stays active
// with an empty list; call Refresh to retry.
func (r *Reconciler[T]) Start(ctx context.Context) error {
	first := false
	r.startOnce.Do(func() { first = true })
	if !first {
		return ErrAlreadyStarted
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	r.running = true
	r.mu.Unlock()

	go r.run()

	sub, err := r.source.Subscribe(ctx, r.deliver, r.lost)
	if err != nil {
		_ = r.Stop()
		return fmt.Errorf("reconcile: subscribe: %w", err)
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		_ = sub.Close()
		return ErrStopped
	}
	r.sub = sub
	r.status.Subscribed = true
	r.mu.Unlock()

	r.logger.Info("Reconciler started", zap.String("policy", string(r.policy)))

	return r.Refresh(ctx)
}

// Refresh re-runs the bulk fetch. Concurrent calls share one fetch.
// On failure the current list is kept and an error wrapping ErrFetch is
// returned.
func (r *Reconciler[T]) Refresh(ctx context.Context) error {
	_, err, _ := r.refreshes.Do("refresh", func() (any, error) {
		return nil, r.fetch(ctx)
	})
	return err
}

func (r *Reconciler[T]) fetch(ctx context.Context) error {
	r.mu.RLock()
	running := r.running
	r.mu.RUnlock()
	if !running {
		return ErrNotStarted
	}

	if err := r.send(ctx, command[T]{kind: commandBegin}); err != nil {
		return err
	}

	records, fetchErr := r.source.Fetch(ctx)

	// Deliver the outcome even if ctx is done so the loop leaves fetching mode.
	if err := r.send(context.Background(), command[T]{kind: commandComplete, records: records, err: fetchErr}); err != nil {
		return err
	}

	if fetchErr != nil {
		return fmt.Errorf("%w: %w", ErrFetch, fetchErr)
	}
	return nil
}

func (r *Reconciler[T]) send(ctx context.Context, cmd command[T]) error {
	cmd.ack = make(chan struct{})
	select {
	case r.commands <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.ack:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Stop releases the subscription and stops the consumer loop. It is
// idempotent and returns once no further mutation can happen.
func (r *Reconciler[T]) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		r.mu.Lock()
		sub := r.sub
		running := r.running
		r.sub = nil
		r.stopped = true
		r.status.Subscribed = false
		r.mu.Unlock()

		if sub != nil {
			err = sub.Close()
		}

		close(r.stop)
		if running {
			<-r.done
		}
		r.logger.Info("Reconciler stopped")
	})
	return err
}

// Snapshot returns a copy of the current list.
func (r *Reconciler[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.list))
	copy(out, r.list)
	return out
}

// Filter returns the filtering view of the current list.
func (r *Reconciler[T]) Filter(query string) []T {
	return Filter(r.adapter, r.Snapshot(), query)
}

// Status returns the current status.
func (r *Reconciler[T]) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := r.status
	st.Size = len(r.list)
	return st
}

// deliver is the subscription callback. It blocks while the queue is full,
// which keeps delivery order intact.
func (r *Reconciler[T]) deliver(record T) {
	select {
	case r.events <- record:
	case <-r.stop:
	}
}

// lost is the subscription failure callback. There is no reconnect: the
// list stops receiving updates until the reconciler is recreated.
func (r *Reconciler[T]) lost(err error) {
	r.mu.Lock()
	r.status.Subscribed = false
	if err != nil {
		r.status.LastError = err.Error()
	}
	r.mu.Unlock()

	r.observer.ObserveSubscriptionLost()
	r.logger.Warn("Change subscription lost; list will no longer receive updates", zap.Error(err))
}

func (r *Reconciler[T]) run() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		case record := <-r.events:
			r.handleEvent(record)
		case cmd := <-r.commands:
			r.handleCommand(cmd)
			close(cmd.ack)
		}
	}
}

func (r *Reconciler[T]) handleEvent(record T) {
	key := r.adapter.Key(record)

	if r.policy == PolicyReplay && r.fetching {
		r.pending = append(r.pending, record)
		r.observer.ObserveEvent(OutcomeQueued)
		if !r.initialized {
			r.logger.Debug("Queued change event until fetch completes", zap.String("id", key))
			return
		}
	}

	if r.policy == PolicyReplay && !r.initialized && !r.fetching {
		// The next fetch reads newer state than this event.
		r.observer.ObserveEvent(OutcomeDropped)
		r.logger.Debug("Dropped change event before initialization", zap.String("id", key))
		return
	}

	r.commit(Apply(r.adapter, r.current(), record), 1)
	r.observer.ObserveEvent(OutcomeApplied)
	r.logger.Debug("Applied change event",
		zap.String("id", key),
		zap.Bool("visible", r.adapter.Visible(record)))
}

func (r *Reconciler[T]) handleCommand(cmd command[T]) {
	switch cmd.kind {
	case commandBegin:
		r.fetching = true
		r.pending = nil

	case commandComplete:
		r.fetching = false
		pending := r.pending
		r.pending = nil
		r.observer.ObserveFetch(cmd.err)

		if cmd.err != nil {
			r.mu.Lock()
			r.status.LastError = cmd.err.Error()
			r.mu.Unlock()
			r.logger.Warn("Bulk fetch failed", zap.Error(cmd.err), zap.Bool("initialized", r.initialized))
			return
		}

		list := Build(r.adapter, cmd.records)
		applied := 0
		if r.policy == PolicyReplay {
			for _, record := range pending {
				list = Apply(r.adapter, list, record)
			}
			applied = len(pending)
		}
		r.initialized = true

		r.mu.Lock()
		r.status.Initialized = true
		r.status.LastFetch = time.Now()
		r.status.LastError = ""
		r.mu.Unlock()

		r.commit(list, applied)
		r.logger.Info("Bulk fetch completed",
			zap.Int("fetched", len(cmd.records)),
			zap.Int("replayed", applied),
			zap.Int("size", len(list)))
	}
}

func (r *Reconciler[T]) current() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list
}

func (r *Reconciler[T]) commit(list []T, applied int) {
	r.mu.Lock()
	r.list = list
	r.status.EventsApplied += applied
	r.mu.Unlock()

	r.observer.ObserveSize(len(list))
	if r.listener != nil {
		out := make([]T, len(list))
		copy(out, list)
		r.listener(out)
	}
}
