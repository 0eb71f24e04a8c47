package profile

import (
	"context"
	"errors"
	"fmt"

	"profile-directory/core/backend"
	"profile-directory/core/session"
	"profile-directory/feature/profile/models"

	"go.uber.org/zap"
)

// ErrMissingDocument is returned when the user has no profile document to update.
var ErrMissingDocument = errors.New("profile: profile document missing")

// Service manages the profile document of the logged-in user.
type Service struct {
	documents    backend.Documents
	accounts     backend.Accounts
	session      *session.Context
	databaseID   string
	collectionID string
	recoveryURL  string
	logger       *zap.Logger
}

// Config names the collection holding profiles and the recovery link target.
type Config struct {
	DatabaseID   string
	CollectionID string
	RecoveryURL  string
}

// NewService creates a new profile service.
func NewService(documents backend.Documents, accounts backend.Accounts, sess *session.Context, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		documents:    documents,
		accounts:     accounts,
		session:      sess,
		databaseID:   cfg.DatabaseID,
		collectionID: cfg.CollectionID,
		recoveryURL:  cfg.RecoveryURL,
		logger:       logger,
	}
}

// GetOrCreate returns the profile keyed by the user's email, creating a
// public one when none exists. Name and email always come from the account.
func (s *Service) GetOrCreate(ctx context.Context) (*models.Profile, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}

	profile, err := s.find(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		raw, err := s.documents.Create(ctx, s.databaseID, s.collectionID, backend.NewID(), models.NewProfile{
			Name:     user.Name,
			Email:    user.Email,
			IsPublic: true,
		})
		if err != nil {
			return nil, fmt.Errorf("profile: create: %w", err)
		}
		created, err := models.Decode(raw)
		if err != nil {
			return nil, err
		}
		profile = &created
		s.logger.Info("Created profile document", zap.String("id", created.ID), zap.String("user_id", user.ID))
	}

	profile.Name = user.Name
	profile.Email = user.Email
	return profile, nil
}

// Update writes form to the user's profile document and renames the account
// when the name is non-empty and differs from the current one.
func (s *Service) Update(ctx context.Context, form models.Form) (*models.Profile, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrMissingDocument
	}

	raw, err := s.documents.Update(ctx, s.databaseID, s.collectionID, existing.ID, form.Document())
	if err != nil {
		return nil, fmt.Errorf("profile: update: %w", err)
	}
	updated, err := models.Decode(raw)
	if err != nil {
		return nil, err
	}

	if form.Name != "" && form.Name != user.Name {
		if _, err := s.session.UpdateName(ctx, form.Name); err != nil {
			return nil, fmt.Errorf("profile: update name: %w", err)
		}
	}

	s.logger.Info("Updated profile document", zap.String("id", updated.ID), zap.Bool("public", updated.IsPublic))
	return &updated, nil
}

// ResetPassword sends a recovery link to email, or to the user's email when empty.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	if email == "" {
		user, err := s.session.Require()
		if err != nil {
			return err
		}
		email = user.Email
	}

	if _, err := s.accounts.CreateRecovery(ctx, email, s.recoveryURL); err != nil {
		return fmt.Errorf("profile: recovery: %w", err)
	}
	s.logger.Info("Password recovery sent")
	return nil
}

func (s *Service) find(ctx context.Context, email string) (*models.Profile, error) {
	list, err := s.documents.List(ctx, s.databaseID, s.collectionID, backend.Equal("email", email))
	if err != nil {
		return nil, fmt.Errorf("profile: lookup: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, nil
	}
	p, err := models.Decode(list.Documents[0])
	if err != nil {
		return nil, err
	}
	return &p, nil
}
