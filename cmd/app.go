package cmd

import (
	"context"
	"fmt"

	"profile-directory/core/backend"
	"profile-directory/core/backend/appwrite"
	"profile-directory/core/backend/sqlstore"
	"profile-directory/core/config"
	"profile-directory/core/database"
	"profile-directory/core/logger"
	"profile-directory/core/metrics"
	"profile-directory/core/server"
	"profile-directory/core/session"
	"profile-directory/feature/directory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// runtime bundles the components shared by every command.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	backend   backend.Backend
	session   *session.Context
	directory *directory.Service
	registry  *prometheus.Registry
}

// bootstrap connects the configured backend, restores the session and
// prepares (without starting) the directory service.
func bootstrap(ctx context.Context, cfg *config.Config, l *zap.Logger) (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var be backend.Backend
	switch cfg.Server.Backend {
	case server.BackendAppwrite:
		client, err := appwrite.New(cfg.Backend, l)
		if err != nil {
			return nil, err
		}
		be = client.Backend()
		l.Info("Using Appwrite backend", zap.String("endpoint", cfg.Backend.Endpoint))

	case server.BackendSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		store := sqlstore.New(db, l)
		if err := store.Migrate(); err != nil {
			return nil, err
		}
		be = store.Backend()
		l.Info("Using SQL backend", zap.String("driver", cfg.Database.Driver))
	}

	sess := session.New(be.Accounts, be.Sessions, l)
	if err := sess.Load(ctx, cfg.Backend.Session); err != nil {
		l.Warn("Starting without a logged-in user", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	source := directory.NewSource(be.Documents, be.Realtime, cfg.Backend.DatabaseID, cfg.Backend.CollectionID, l)
	dir := directory.NewService(source, cfg.Reconcile, metrics.NewReconciler(registry), l)

	return &runtime{
		cfg:       cfg,
		logger:    l,
		backend:   be,
		session:   sess,
		directory: dir,
		registry:  registry,
	}, nil
}

// loadRuntime loads configuration and the logger, then bootstraps.
func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	return bootstrap(ctx, cfg, l)
}
