package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and set configuration values.

Keys:
  feed.url               announcement feed endpoint URL
  feed.page_size         records requested per feed page
  data.dir               database directory (default ~/.rostra/data)
  sync.retention_months  default retention window for sync (0 = keep everything)
  search.default_limit   default page size for search`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := []string{
		file.KeyFeedURL,
		file.KeyFeedPageSize,
		file.KeyDataDir,
		file.KeyRetentionMonths,
		file.KeySearchLimit,
	}
	sort.Strings(keys)

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	for _, key := range keys {
		val, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %s = (not set)\n", key)
			continue
		}
		cmd.Printf("  %s = %v\n", key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Numeric keys are stored as integers so GetInt works on them.
	var value any = raw
	switch key {
	case file.KeyFeedPageSize, file.KeyRetentionMonths, file.KeySearchLimit:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("value for %s must be an integer", key)
		}
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}
