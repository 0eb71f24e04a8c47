package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"profile-directory/core/backend"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type accounts struct {
	s *Store
}

func (a *accounts) Create(ctx context.Context, userID, email, password, name string) (*backend.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, backend.NewError(http.StatusBadRequest, "general_argument_invalid", "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, backend.NewError(http.StatusBadRequest, "general_argument_invalid",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if userID == "" {
		userID = backend.NewID()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: hash password: %w", err)
	}

	row := accountRow{ID: userID, Email: email, Name: name, PasswordHash: string(hash)}

	a.s.writeMu.Lock()
	defer a.s.writeMu.Unlock()

	err = a.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&accountRow{}).Where("email = ? OR id = ?", email, userID).Count(&count).Error; err != nil {
			return fmt.Errorf("sqlstore: check account: %w", err)
		}
		if count > 0 {
			return backend.NewError(http.StatusConflict, backend.TypeUserAlreadyExists,
				"A user with the same id, email, or phone already exists in this project.")
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("sqlstore: create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.s.logger.Info("Account created", zap.String("user_id", row.ID))
	return toUser(row), nil
}

func (a *accounts) CreateEmailPasswordSession(ctx context.Context, email, password string) (*backend.Session, error) {
	invalid := backend.NewError(http.StatusUnauthorized, backend.TypeInvalidCredentials,
		"Invalid credentials. Please check the email and password.")

	var account accountRow
	err := a.s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}

	secret, secretHash, err := newSecret()
	if err != nil {
		return nil, err
	}
	row := sessionRow{ID: backend.NewID(), UserID: account.ID, SecretHash: secretHash}
	if err := a.s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: create session: %w", err)
	}

	return &backend.Session{ID: row.ID, UserID: row.UserID, Secret: secret}, nil
}

func (a *accounts) Get(ctx context.Context, secret string) (*backend.User, error) {
	_, account, err := a.resolve(ctx, secret)
	if err != nil {
		return nil, err
	}
	return toUser(*account), nil
}

func (a *accounts) DeleteSession(ctx context.Context, secret, sessionID string) error {
	session, _, err := a.resolve(ctx, secret)
	if err != nil {
		return err
	}
	if sessionID == backend.CurrentSession {
		sessionID = session.ID
	}

	result := a.s.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, session.UserID).Delete(&sessionRow{})
	if result.Error != nil {
		return fmt.Errorf("sqlstore: delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return backend.NewError(http.StatusNotFound, "user_session_not_found", "session not found")
	}
	return nil
}

func (a *accounts) UpdateName(ctx context.Context, secret, name string) (*backend.User, error) {
	_, account, err := a.resolve(ctx, secret)
	if err != nil {
		return nil, err
	}
	if err := a.s.db.WithContext(ctx).Model(account).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: update name: %w", err)
	}
	account.Name = name
	return toUser(*account), nil
}

// CreateRecovery stores a recovery token. Mail delivery is outside the store;
// the link is logged at debug level.
func (a *accounts) CreateRecovery(ctx context.Context, email, recoveryURL string) (*backend.Token, error) {
	if recoveryURL == "" {
		return nil, backend.NewError(http.StatusBadRequest, "general_argument_invalid", "recovery url is required")
	}

	var account accountRow
	err := a.s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, backend.NewError(http.StatusNotFound, backend.TypeUserNotFound, "User with the requested ID could not be found.")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find account: %w", err)
	}

	secret, secretHash, err := newSecret()
	if err != nil {
		return nil, err
	}
	row := recoveryRow{
		ID:         backend.NewID(),
		UserID:     account.ID,
		SecretHash: secretHash,
		URL:        recoveryURL,
		Expire:     time.Now().Add(a.s.recoveryTTL).UTC(),
	}
	if err := a.s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: create recovery: %w", err)
	}

	a.s.logger.Info("Password recovery requested", zap.String("user_id", account.ID))
	a.s.logger.Debug("Password recovery link",
		zap.String("url", fmt.Sprintf("%s?userId=%s&secret=%s&expire=%s", recoveryURL, account.ID, secret, row.Expire.Format(time.RFC3339))))

	return &backend.Token{ID: row.ID, UserID: row.UserID, Secret: secret, Expire: row.Expire}, nil
}

// resolve finds the session and account a secret belongs to.
func (a *accounts) resolve(ctx context.Context, secret string) (*sessionRow, *accountRow, error) {
	unauthorized := backend.NewError(http.StatusUnauthorized, backend.TypeUnauthorized, "User (role: guests) missing scope (account)")
	if secret == "" {
		return nil, nil, unauthorized
	}

	var session sessionRow
	err := a.s.db.WithContext(ctx).Where("secret_hash = ?", hashSecret(secret)).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, unauthorized
	}
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: find session: %w", err)
	}

	var account accountRow
	err = a.s.db.WithContext(ctx).Where("id = ?", session.UserID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, unauthorized
	}
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: find account: %w", err)
	}
	return &session, &account, nil
}

func toUser(row accountRow) *backend.User {
	return &backend.User{ID: row.ID, Name: row.Name, Email: row.Email}
}
