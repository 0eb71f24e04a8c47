package sqlstore

import (
	"context"
	"errors"
	"sync"

	"profile-directory/core/backend"

	"go.uber.org/zap"
)

// ErrSubscriberOverflow is reported to a subscriber that fell too far behind.
var ErrSubscriberOverflow = errors.New("sqlstore: subscriber queue overflow")

const subscriberQueueSize = 1024

// Broker fans change events out to realtime subscribers.
// Each subscriber receives events in publish order on its own goroutine.
type Broker struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

// NewBroker creates an empty broker.
func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{logger: logger, subs: make(map[int]*subscriber)}
}

// Subscribe registers handler for events on any of channels.
func (b *Broker) Subscribe(_ context.Context, channels []string, handler backend.Handler) (backend.Subscription, error) {
	if len(channels) == 0 {
		return nil, errors.New("sqlstore: at least one channel is required")
	}

	sub := &subscriber{
		broker:   b,
		channels: make(map[string]struct{}, len(channels)),
		handler:  handler,
		queue:    make(chan backend.Event, subscriberQueueSize),
		lost:     make(chan error, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, ch := range channels {
		sub.channels[ch] = struct{}{}
	}

	b.mu.Lock()
	sub.id = b.nextID
	b.nextID++
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.run()
	return sub, nil
}

// Publish queues ev for every subscriber listening on one of its channels.
// A subscriber whose queue is full is dropped and told so through OnLost.
func (b *Broker) Publish(ev backend.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		if !sub.matches(ev.Channels) {
			continue
		}
		select {
		case sub.queue <- ev:
		default:
			delete(b.subs, id)
			sub.lost <- ErrSubscriberOverflow
			b.logger.Warn("Dropped slow realtime subscriber", zap.Int("subscriber", id))
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

type subscriber struct {
	id       int
	broker   *Broker
	channels map[string]struct{}
	handler  backend.Handler

	queue chan backend.Event
	lost  chan error

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func (s *subscriber) matches(channels []string) bool {
	for _, ch := range channels {
		if _, ok := s.channels[ch]; ok {
			return true
		}
	}
	return false
}

func (s *subscriber) run() {
	defer close(s.done)
	for {
		// Queued events go out before a pending loss.
		select {
		case <-s.stop:
			return
		case ev := <-s.queue:
			s.dispatch(ev)
			continue
		default:
		}

		select {
		case <-s.stop:
			return
		case ev := <-s.queue:
			s.dispatch(ev)
		case err := <-s.lost:
			if s.handler.OnLost != nil {
				s.handler.OnLost(err)
			}
			return
		}
	}
}

func (s *subscriber) dispatch(ev backend.Event) {
	if s.handler.OnEvent != nil {
		s.handler.OnEvent(ev)
	}
}

// Close unregisters the subscriber and waits for its goroutine.
func (s *subscriber) Close() error {
	s.closeOnce.Do(func() {
		s.broker.remove(s.id)
		close(s.stop)
		<-s.done
	})
	return nil
}
