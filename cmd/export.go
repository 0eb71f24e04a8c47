package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"profile-directory/core/storage"
	"profile-directory/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the export command
	keepSnapshots int
	yesConfirm    bool
)

// exportCmd writes one directory snapshot to object storage.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the public directory to object storage",
	Long: `Fetches the public profiles once and stores them as a gzip compressed
JSON snapshot under snapshots/ in the configured bucket.

Examples:
  # Store a snapshot
  export

  # Store a snapshot and keep only the 10 newest (with interactive confirmation)
  export --keep 10

  # Same, non-interactive
  export --keep 10 --yes`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&keepSnapshots, "keep", 0, "Remove all but the N newest snapshots (0 keeps everything)")
	exportCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm snapshot removal (non-interactive)")
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	l := rt.logger
	defer l.Sync()

	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	// The initial fetch must succeed; an empty snapshot would be misleading
	if err := rt.directory.Start(ctx); err != nil {
		return err
	}
	defer rt.directory.Stop()

	svc := export.NewService(client, rt.directory, l)
	info, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	l.Info("Snapshot stored", zap.String("object", info.Object), zap.Int("profiles", info.Total))

	if keepSnapshots <= 0 {
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No snapshots were removed.")
		return nil
	}

	removed, err := svc.Prune(ctx, keepSnapshots)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	l.Info("Old snapshots removed", zap.Strings("removed", removed))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm removal of old snapshots: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
