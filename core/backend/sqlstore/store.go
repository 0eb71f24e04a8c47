package sqlstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"profile-directory/core/backend"
	"profile-directory/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is a self-hosted backend on a SQL database.
//
// Writes are serialized so change events reach subscribers in the order the
// writes were committed.
type Store struct {
	db          *gorm.DB
	logger      *zap.Logger
	broker      *Broker
	recoveryTTL time.Duration

	writeMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRecoveryTTL sets how long password recovery tokens stay valid.
func WithRecoveryTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.recoveryTTL = ttl
		}
	}
}

// New creates a store on db. Call Migrate before use.
func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		db:          db,
		logger:      logger,
		broker:      NewBroker(logger),
		recoveryTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend exposes the store as a backend.Backend.
func (s *Store) Backend() backend.Backend {
	return backend.Backend{
		Documents: &documents{s: s},
		Accounts:  &accounts{s: s},
		Realtime:  s.broker,
	}
}

// Broker returns the change event broker of the store.
func (s *Store) Broker() *Broker {
	return s.broker
}

// Migrate creates or updates the tables and verifies their columns.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&documentRow{}, &accountRow{}, &sessionRow{}, &recoveryRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}

	tables := make([]string, 0, len(requiredColumns))
	for table := range requiredColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		missing, err := database.MissingColumns(s.db, table, requiredColumns[table]...)
		if err != nil {
			return fmt.Errorf("sqlstore: inspect %s: %w", table, err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("sqlstore: table %s is missing columns: %s", table, strings.Join(missing, ", "))
		}
	}

	s.logger.Info("SQL store schema ready", zap.String("dialect", s.db.Dialector.Name()))
	return nil
}

// newSecret returns a random secret and its storage hash.
func newSecret() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("sqlstore: generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	return secret, hashSecret(secret), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
