package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"profile-directory/core/backend"
	"profile-directory/core/loader"
	"profile-directory/core/metrics"
	"profile-directory/core/middleware/auth"
	"profile-directory/core/middleware/rayid"
	"profile-directory/core/middleware/requestlog"
	"profile-directory/core/reconcile"
	"profile-directory/core/storage"
	"profile-directory/feature/directory"
	"profile-directory/feature/export"
	"profile-directory/feature/profile"

	authfeature "profile-directory/feature/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "profile-directory/docs/swagger"
)

// @title Profile Directory API
// @version 1.0
// @description Public profile directory agent backed by Appwrite or a SQL document store.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the profile directory server",
	Long:  `Starts the HTTP server, restores the session and keeps the public directory in sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()

		// The API stays up without a directory; POST /profiles/refresh or /profiles/restart retry
		if err := rt.directory.Start(ctx); err != nil {
			if errors.Is(err, reconcile.ErrFetch) {
				logg.Warn("Failed to fetch public profiles; use POST /profiles/refresh to retry", zap.Error(err))
			} else {
				logg.Warn("Public profile directory unavailable; use POST /profiles/restart to retry", zap.Error(err))
			}
		}
		defer rt.directory.Stop()

		// Realtime and document access follow the user session
		rt.session.Watch(func(*backend.User) {
			go func() {
				if ctx.Err() != nil {
					return
				}
				if err := rt.directory.Start(ctx); err != nil {
					logg.Warn("Directory restart after session change failed", zap.Error(err))
				}
			}()
		})

		// Storage is optional; the export feature is disabled without it
		var exportSvc *export.Service
		if client, err := storage.NewClient(rt.cfg.Storage); err != nil {
			logg.Warn("Snapshot storage unavailable", zap.Error(err))
		} else {
			exportSvc = export.NewService(client, rt.directory, logg)
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		guard := authfeature.RequireUser(rt.session)

		mgr := loader.NewManager(logg)
		mgr.Register(authfeature.NewFeature(rt.session, logg))
		mgr.Register(directory.NewFeature(rt.directory, guard))
		mgr.Register(profile.NewFeature(profile.NewService(rt.backend.Documents, rt.backend.Accounts, rt.session, profile.Config{
			DatabaseID:   rt.cfg.Backend.DatabaseID,
			CollectionID: rt.cfg.Backend.CollectionID,
			RecoveryURL:  rt.cfg.Backend.RecoveryURL,
		}, logg), guard))
		mgr.Register(export.NewFeature(exportSvc, guard))

		// RayID first so every log line can be traced
		app.Use(rayid.New())
		app.Use(requestlog.New(logg))

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", metrics.Handler(rt.registry))

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("addr", rt.cfg.Server.Addr()))
			errCh <- app.Listen(rt.cfg.Server.Addr())
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout())
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
