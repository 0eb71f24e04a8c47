package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"profile-directory/core/reconcile"
	"profile-directory/feature/directory"
	"profile-directory/feature/profile/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchQuery string

// watchCmd logs the reconciled directory on every change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the public profile directory",
	Long: `Fetches the public profiles, subscribes to their changes and logs the
(optionally filtered) list after every change until interrupted.

Examples:
  # Every public profile
  watch

  # Only profiles whose name or city contains "pune"
  watch --query pune`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchQuery, "query", "q", "", "Filter by name or city (case-insensitive)")
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	l := rt.logger
	defer l.Sync()

	rt.directory.OnChange(func(list []models.Profile) {
		printDirectory(l, reconcile.Filter[models.Profile](directory.Adapter{}, list, watchQuery))
	})

	if err := rt.directory.Start(ctx); err != nil {
		if !errors.Is(err, reconcile.ErrFetch) {
			return err
		}
		l.Warn("Failed to fetch public profiles; waiting for changes", zap.Error(err))
	}
	defer rt.directory.Stop()

	<-ctx.Done()
	st := rt.directory.Status()
	l.Info("Stopped watching",
		zap.Int("size", st.Size),
		zap.Int("events_applied", st.EventsApplied),
		zap.Bool("subscribed", st.Subscribed))
	return nil
}

// printDirectory logs the list, one line per profile.
func printDirectory(l *zap.Logger, list []models.Profile) {
	l.Info("Public profiles", zap.String("query", watchQuery), zap.Int("count", len(list)))
	for _, p := range list {
		l.Info("Profile",
			zap.String("id", p.ID),
			zap.String("name", p.Name),
			zap.String("city", p.City))
	}
}
