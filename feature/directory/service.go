package directory

import (
	"context"
	"sync"

	"profile-directory/core/reconcile"
	"profile-directory/feature/profile/models"

	"go.uber.org/zap"
)

// Service owns the reconciled list of public profiles.
type Service struct {
	source   reconcile.Source[models.Profile]
	cfg      reconcile.Config
	observer reconcile.Observer
	logger   *zap.Logger

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex

	mu        sync.RWMutex
	rec       *reconcile.Reconciler[models.Profile]
	listeners []func([]models.Profile)
}

// NewService creates a directory service. observer may be nil.
func NewService(source reconcile.Source[models.Profile], cfg reconcile.Config, observer reconcile.Observer, logger *zap.Logger) *Service {
	return &Service{
		source:   source,
		cfg:      cfg,
		observer: observer,
		logger:   logger,
	}
}

// OnChange registers fn to receive the full list after every change.
// fn must not block.
func (s *Service) OnChange(fn func([]models.Profile)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Start replaces any running reconciler with a fresh one: a new subscription
// and a new bulk fetch. A fetch failure is returned wrapped in
// reconcile.ErrFetch while the list stays live and empty.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.stopLocked()

	rec, err := reconcile.New[models.Profile](Adapter{}, s.source, s.cfg, s.logger,
		reconcile.WithObserver[models.Profile](s.observer),
		reconcile.WithListener[models.Profile](s.notify))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()

	if err := rec.Start(ctx); err != nil {
		s.logger.Warn("Public profile directory started with errors", zap.Error(err))
		return err
	}
	return nil
}

// Stop releases the subscription. It is safe to call at any time.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	s.mu.Lock()
	rec := s.rec
	s.rec = nil
	s.mu.Unlock()

	if rec != nil {
		if err := rec.Stop(); err != nil {
			s.logger.Warn("Failed to release change subscription", zap.Error(err))
		}
	}
}

// Refresh re-runs the bulk fetch and returns the new list.
func (s *Service) Refresh(ctx context.Context) ([]models.Profile, error) {
	rec := s.current()
	if rec == nil {
		return nil, reconcile.ErrNotStarted
	}
	if err := rec.Refresh(ctx); err != nil {
		return nil, err
	}
	return rec.Snapshot(), nil
}

// List returns the profiles matching query by name or city. An empty query
// returns every public profile.
func (s *Service) List(query string) []models.Profile {
	rec := s.current()
	if rec == nil {
		return []models.Profile{}
	}
	return rec.Filter(query)
}

// Status reports the state of the reconciler.
func (s *Service) Status() reconcile.Status {
	rec := s.current()
	if rec == nil {
		policy, _ := s.cfg.Policy()
		return reconcile.Status{Policy: policy}
	}
	return rec.Status()
}

func (s *Service) current() *reconcile.Reconciler[models.Profile] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

func (s *Service) notify(list []models.Profile) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(list)
	}
}
