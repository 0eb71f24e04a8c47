package directory

import (
	"context"
	"fmt"

	"profile-directory/core/backend"
	"profile-directory/core/reconcile"
	"profile-directory/feature/profile/models"

	"go.uber.org/zap"
)

// Source reads public profiles from a backend collection and streams its changes.
type Source struct {
	documents    backend.Documents
	realtime     backend.Realtime
	databaseID   string
	collectionID string
	logger       *zap.Logger
}

// NewSource creates a source for one profile collection.
func NewSource(documents backend.Documents, realtime backend.Realtime, databaseID, collectionID string, logger *zap.Logger) *Source {
	return &Source{
		documents:    documents,
		realtime:     realtime,
		databaseID:   databaseID,
		collectionID: collectionID,
		logger:       logger,
	}
}

// Fetch lists the documents with isPublic = true in store order.
// Documents that cannot be decoded are skipped.
func (s *Source) Fetch(ctx context.Context) ([]models.Profile, error) {
	list, err := s.documents.List(ctx, s.databaseID, s.collectionID, backend.Equal("isPublic", true))
	if err != nil {
		return nil, fmt.Errorf("list public profiles: %w", err)
	}

	profiles := make([]models.Profile, 0, len(list.Documents))
	for _, raw := range list.Documents {
		p, err := models.Decode(raw)
		if err != nil {
			s.logger.Warn("Skipping malformed profile document", zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Subscribe delivers the payload of every change event of the collection.
// Create, update and delete events are treated alike: the payload is the
// latest known state of one profile.
func (s *Source) Subscribe(ctx context.Context, deliver func(models.Profile), lost func(error)) (reconcile.Subscription, error) {
	channel := backend.DocumentsChannel(s.databaseID, s.collectionID)
	return s.realtime.Subscribe(ctx, []string{channel}, backend.Handler{
		OnEvent: func(ev backend.Event) {
			p, err := models.Decode(ev.Payload)
			if err != nil {
				s.logger.Warn("Skipping malformed profile event", zap.Strings("events", ev.Events), zap.Error(err))
				return
			}
			deliver(p)
		},
		OnLost: lost,
	})
}
