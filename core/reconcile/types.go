package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFetch wraps failures of the bulk initialization query.
	ErrFetch = errors.New("reconcile: fetch failed")
	// ErrStopped is returned when the reconciler has been stopped.
	ErrStopped = errors.New("reconcile: reconciler stopped")
	// ErrNotStarted is returned by Refresh before Start.
	ErrNotStarted = errors.New("reconcile: reconciler not started")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("reconcile: reconciler already started")
)

// Adapter defines the model-specific parts of reconciliation.
// Each adapter describes how to identify a record, whether it belongs in the
// list, and which fields the filtering view searches.
type Adapter[T any] interface {
	// Key returns the stable unique identifier of a record.
	Key(record T) string
	// Visible reports whether the record belongs in the reconciled list.
	Visible(record T) bool
	// SearchFields returns the fields matched by Filter.
	SearchFields(record T) []string
}

// Source is the remote authoritative store of records.
type Source[T any] interface {
	// Fetch performs one bulk read of the visible records, in store order.
	Fetch(ctx context.Context) ([]T, error)
	// Subscribe starts delivering change notifications. deliver is called
	// sequentially in delivery order with the latest full state of one record;
	// lost is called at most once when the subscription fails.
	Subscribe(ctx context.Context, deliver func(T), lost func(error)) (Subscription, error)
}

// Subscription is the scoped handle returned by Source.Subscribe.
type Subscription interface {
	// Close releases the subscription. It must be idempotent and guarantee
	// that deliver is not called after it returns.
	Close() error
}

// Policy decides how change events that arrive while a bulk fetch is in
// flight interact with the fetch result.
type Policy string

const (
	// PolicyReplay queues events received while a fetch is in flight and
	// replays them, in delivery order, over the fetched list.
	PolicyReplay Policy = "replay"
	// PolicyOverwrite applies events immediately and lets the fetch result
	// replace the list when it arrives (last write wins).
	PolicyOverwrite Policy = "overwrite"
)

// Config holds configuration for the reconciler.
type Config struct {
	// QueueSize is the capacity of the change event channel.
	QueueSize int `mapstructure:"queue_size" default:"256"`
	// EarlyEvents is the early event policy (replay, overwrite).
	EarlyEvents string `mapstructure:"early_events" default:"replay"`
}

// Policy returns the configured early event policy.
func (c Config) Policy() (Policy, error) {
	switch Policy(c.EarlyEvents) {
	case PolicyReplay, "":
		return PolicyReplay, nil
	case PolicyOverwrite:
		return PolicyOverwrite, nil
	default:
		return "", fmt.Errorf("reconcile: unknown early event policy %q", c.EarlyEvents)
	}
}

// Status is a point-in-time view of the reconciler.
type Status struct {
	// Initialized is true once a bulk fetch has succeeded.
	Initialized bool `json:"initialized"`
	// Subscribed is true while the change subscription is live.
	Subscribed bool `json:"subscribed"`
	// Size is the number of records in the list.
	Size int `json:"size"`
	// Policy is the early event policy in use.
	Policy Policy `json:"policy"`
	// LastFetch is when the last successful bulk fetch completed.
	LastFetch time.Time `json:"last_fetch"`
	// LastError describes the last fetch or subscription failure.
	LastError string `json:"last_error,omitempty"`
	// EventsApplied counts change event applications, replays included.
	EventsApplied int `json:"events_applied"`
}

// Observer receives reconciler measurements. See core/metrics.
type Observer interface {
	// ObserveEvent records the outcome of one change event (applied, queued, dropped).
	ObserveEvent(outcome string)
	// ObserveFetch records the result of a bulk fetch.
	ObserveFetch(err error)
	// ObserveSubscriptionLost records a failed subscription.
	ObserveSubscriptionLost()
	// ObserveSize records the list size after a mutation.
	ObserveSize(n int)
}

// Event outcomes reported to the Observer.
const (
	OutcomeApplied = "applied"
	OutcomeQueued  = "queued"
	OutcomeDropped = "dropped"
)

type nopObserver struct{}

func (nopObserver) ObserveEvent(string)      {}
func (nopObserver) ObserveFetch(error)       {}
func (nopObserver) ObserveSubscriptionLost() {}
func (nopObserver) ObserveSize(int)          {}
