package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single announcement by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	update, err := queryService.GetByID(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no announcement with id %q", args[0])
		}
		return err
	}

	if getJSON {
		data, err := json.MarshalIndent(update, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal update: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s\n", update.Title)
	cmd.Printf("ID:       %s\n", update.ID)
	cmd.Printf("Status:   %s\n", update.Status)
	if update.Locale != "" {
		cmd.Printf("Locale:   %s\n", update.Locale)
	}
	cmd.Printf("Created:  %s\n", update.CreatedAt.Format("2006-01-02"))
	cmd.Printf("Modified: %s\n", update.ModifiedAt.Format("2006-01-02"))
	if len(update.Tags) > 0 {
		cmd.Printf("Tags:     %s\n", strings.Join(update.Tags, ", "))
	}
	if len(update.Categories) > 0 {
		cmd.Printf("Categories: %s\n", strings.Join(update.Categories, ", "))
	}
	if len(update.Products) > 0 {
		cmd.Printf("Products: %s\n", strings.Join(update.Products, ", "))
	}
	if len(update.Availabilities) > 0 {
		cmd.Println("Availability:")
		for _, a := range update.Availabilities {
			if a.Date != nil {
				cmd.Printf("  %s: %s\n", a.Ring, a.Date.Format("2006-01"))
			} else {
				cmd.Printf("  %s: (no date)\n", a.Ring)
			}
		}
	}
	if update.BodyText != "" {
		cmd.Println()
		cmd.Println(update.BodyText)
	}
	return nil
}
