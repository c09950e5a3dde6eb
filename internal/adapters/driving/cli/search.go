package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/config/file"
	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

var (
	searchStatus         string
	searchRings          []string
	searchTags           []string
	searchCategories     []string
	searchProducts       []string
	searchModifiedFrom   string
	searchModifiedTo     string
	searchRetirementFrom string
	searchRetirementTo   string
	searchSort           string
	searchOrder          string
	searchLimit          int
	searchOffset         int
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the local announcement replica",
	Long: `Searches synced announcements. Free text matches title and body with
prefix matching; filters combine with AND. Every value in a repeated
filter flag must be present on a record for it to match.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "filter by lifecycle status")
	searchCmd.Flags().StringSliceVar(&searchRings, "ring", nil, "require an availability ring (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "require a tag (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchCategories, "category", nil, "require a category (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchProducts, "product", nil, "require a product (repeatable)")
	searchCmd.Flags().StringVar(&searchModifiedFrom, "modified-from", "", "modified on or after (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchModifiedTo, "modified-to", "", "modified on or before (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchRetirementFrom, "retirement-from", "", "retirement month on or after (YYYY-MM)")
	searchCmd.Flags().StringVar(&searchRetirementTo, "retirement-to", "", "retirement month on or before (YYYY-MM)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort key: relevance, modified, created, retirement")
	searchCmd.Flags().StringVar(&searchOrder, "order", "", "sort order: asc or desc")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	req := domain.SearchRequest{
		Status:         searchStatus,
		Rings:          searchRings,
		Tags:           searchTags,
		Categories:     searchCategories,
		Products:       searchProducts,
		RetirementFrom: searchRetirementFrom,
		RetirementTo:   searchRetirementTo,
		Sort:           domain.SortKey(searchSort),
		Order:          domain.SortOrder(searchOrder),
		Limit:          searchLimit,
		Offset:         searchOffset,
	}
	if len(args) > 0 {
		req.Query = args[0]
	}
	if req.Limit == 0 && configStore != nil {
		req.Limit = configStore.GetInt(file.KeySearchLimit)
	}

	var err error
	if req.ModifiedFrom, err = parseDayFlag("modified-from", searchModifiedFrom); err != nil {
		return err
	}
	if req.ModifiedTo, err = parseDayFlag("modified-to", searchModifiedTo); err != nil {
		return err
	}

	resp, err := queryService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

// parseDayFlag parses a day-granularity date flag value.
func parseDayFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil //nolint:nilnil // Absent flag means no bound
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q (want YYYY-MM-DD)", name, value)
	}
	return &t, nil
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results %d-%d of %d:\n\n",
		resp.Metadata.Offset+1, resp.Metadata.Offset+len(resp.Results), resp.Metadata.Total)

	for i := range resp.Results {
		u := &resp.Results[i]

		cmd.Printf("  [%d] %s\n", resp.Metadata.Offset+i+1, u.Title)
		cmd.Printf("      ID: %s  Status: %s  Modified: %s\n",
			u.ID, u.Status, u.ModifiedAt.Format("2006-01-02"))
		if retirement := u.RetirementDate(); retirement != nil {
			cmd.Printf("      Retirement: %s\n", retirement.Format("2006-01"))
		}
		if len(u.Tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(u.Tags, ", "))
		}
		cmd.Println()
	}

	if resp.Metadata.HasMore {
		cmd.Printf("More results available; use --offset %d.\n",
			resp.Metadata.Offset+len(resp.Results))
	}
	return nil
}
