package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gnzdotmx/vidscribe/internal/utils"
)

var (
	scratchDir     string
	olderThanHours int
	cleanupDryRun  bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up leftover scratch directories",
	Long: `Remove per-run scratch directories that an interrupted or crashed run left behind.
Only directories named after a run id are considered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := scratchDir
		if root == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root = cfg.ScratchRoot
		}

		if _, err := os.Stat(root); os.IsNotExist(err) {
			utils.LogInfo("Scratch directory %s does not exist, nothing to clean", root)
			return nil
		}

		cutoff := time.Now().Add(-time.Duration(olderThanHours) * time.Hour)
		toDelete, err := staleRunDirs(root, cutoff)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(toDelete) == 0 {
			fmt.Fprintln(out, "No directories to delete.")
			return nil
		}

		fmt.Fprintf(out, "Found %d directories to delete:\n", len(toDelete))
		for _, dir := range toDelete {
			fmt.Fprintf(out, "- %s\n", dir)
		}

		if cleanupDryRun {
			fmt.Fprintln(out, "Dry run - no directories were deleted.")
			return nil
		}

		for _, dir := range toDelete {
			fullPath := filepath.Join(root, dir)
			utils.LogVerbose("Deleting %s...", fullPath)

			if err := os.RemoveAll(fullPath); err != nil {
				utils.LogError("Error deleting %s: %v", fullPath, err)
			}
		}

		fmt.Fprintln(out, "Cleanup completed.")
		return nil
	},
}

// staleRunDirs lists the run directories under root last modified before cutoff,
// oldest first
func staleRunDirs(root string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch directory: %w", err)
	}

	type runDir struct {
		name    string
		modTime time.Time
	}
	var stale []runDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			utils.LogDebug("Skipping %s: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, runDir{name: entry.Name(), modTime: info.ModTime()})
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].modTime.Before(stale[j].modTime)
	})

	names := make([]string, 0, len(stale))
	for _, d := range stale {
		names = append(names, d.name)
	}
	return names, nil
}

func init() {
	cleanupCmd.Flags().StringVarP(&scratchDir, "dir", "d", "", "Scratch directory to clean up (defaults to the configured one)")
	cleanupCmd.Flags().IntVarP(&olderThanHours, "older-than", "o", 24, "Delete run directories older than this many hours")
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Show what would be deleted without actually deleting")

	rootCmd.AddCommand(cleanupCmd)
}
