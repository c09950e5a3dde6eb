package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync checkpoint",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	checkpoint, err := syncService.Status(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("Sync Status")
	cmd.Println("===========")
	cmd.Printf("State:        %s\n", checkpoint.Status)

	if checkpoint.IsInitial() {
		cmd.Println("Watermark:    (never synced)")
	} else {
		cmd.Printf("Watermark:    %s\n", checkpoint.Watermark.Format(time.RFC3339))
	}

	cmd.Printf("Record count: %d\n", checkpoint.LastRecordCount)
	if checkpoint.LastDuration > 0 {
		cmd.Printf("Last run:     %s\n", checkpoint.LastDuration.Round(time.Millisecond))
	}
	if !checkpoint.LastCheckedAt.IsZero() {
		cmd.Printf("Last checked: %s\n", checkpoint.LastCheckedAt.Format(time.RFC3339))
	}
	if checkpoint.Status == domain.SyncStatusFailed && checkpoint.LastError != "" {
		cmd.Printf("Last error:   %s\n", checkpoint.LastError)
	}
	return nil
}
