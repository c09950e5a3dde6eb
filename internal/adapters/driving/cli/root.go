// Package cli implements the rostra command-line interface using cobra.
// Commands are thin adapters: they parse flags, call the driving ports and
// render the result.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/config/file"
	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/feed"
	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/storage/sqlite"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driving"
	"github.com/rostra-labs/rostra-cli/internal/core/services"
	"github.com/rostra-labs/rostra-cli/internal/logger"
	htmlnorm "github.com/rostra-labs/rostra-cli/internal/normalisers/html"
)

// Services wired during startup and shared by all commands.
var (
	version      = "dev"
	verboseFlag  bool
	configStore  driven.ConfigStore
	recordStore  *sqlite.Store
	syncService  driving.SyncRunner
	queryService driving.UpdateQueryService
)

var rootCmd = &cobra.Command{
	Use:   "rostra",
	Short: "Local replica of the service-update announcement feed",
	Long: `Rostra maintains a local, continuously-refreshed replica of the remote
service-update announcement feed and serves ranked, filtered searches
against it, from the command line or over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		return initServices()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command. The version string is injected by main.
func Execute(v string) {
	version = v
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeServices() //nolint:errcheck // Best-effort cleanup on the error path
		os.Exit(1)
	}
}

// initServices wires the adapters into the core services. Commands that run
// before wiring succeeds fail with the underlying error.
func initServices() error {
	if configStore != nil {
		return nil // Already wired (e.g. in tests)
	}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(cfg.GetString(file.KeyDataDir))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	recordStore = store
	logger.Debug("Store: %s", store.Path())

	var feedOpts []feed.Option
	if pageSize := cfg.GetInt(file.KeyFeedPageSize); pageSize > 0 {
		feedOpts = append(feedOpts, feed.WithPageSize(pageSize))
	}
	feedClient := feed.NewClient(cfg.GetString(file.KeyFeedURL), feedOpts...)

	syncService = services.NewSyncEngine(
		store.CheckpointStore(), store.UpdateStore(), feedClient, htmlnorm.New())
	queryService = services.NewQueryService(store.UpdateStore())

	return nil
}

// closeServices releases resources held by the wired adapters.
func closeServices() error {
	if recordStore == nil {
		return nil
	}
	err := recordStore.Close()
	recordStore = nil
	return err
}
