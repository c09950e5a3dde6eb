package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/config/file"
	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

var syncRetentionMonths int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the local replica with the remote feed",
	Long: `Fetches announcement records modified since the last sync and applies
them to the local store in one atomic batch. The first run fetches the
full feed. Only one sync runs at a time, enforced across processes.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncRetentionMonths, "retention-months", -1,
		"drop records older than this many months (-1 = use config, 0 = keep everything)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	if configStore.GetString(file.KeyFeedURL) == "" {
		return errors.New("feed URL not configured; run: rostra config set feed.url <url>")
	}

	months := syncRetentionMonths
	if months < 0 {
		months = configStore.GetInt(file.KeyRetentionMonths)
	}
	var retentionStart time.Time
	if months > 0 {
		retentionStart = domain.MonthFloor(time.Now().UTC().AddDate(0, -months, 0))
		cmd.Printf("Retention floor: %s\n", retentionStart.Format("2006-01"))
	}

	cmd.Println("Synchronising...")
	result := syncService.Run(cmd.Context(), retentionStart)

	if !result.Success {
		if result.Error == domain.ErrSyncInProgress.Error() {
			cmd.Println("Another sync is already in progress.")
			return nil
		}
		return errors.New(result.Error)
	}

	if result.RecordsProcessed == 0 {
		cmd.Printf("Already up to date (checked in %s).\n", result.Duration.Round(time.Millisecond))
		return nil
	}

	cmd.Printf("Synchronised %d records (%d new, %d updated) in %s.\n",
		result.RecordsProcessed, result.RecordsInserted, result.RecordsUpdated,
		result.Duration.Round(time.Millisecond))
	return nil
}
