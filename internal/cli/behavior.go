package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/behavior"
)

// NewBehaviorCmd creates the behavior command group.
func NewBehaviorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "behavior",
		Short: "Inspect, export or clear recorded behavior",
		Long: `Behavior is stored locally in the configured backend (SQLite by default)
under the user_behavior_data key.

Commands:
  status     Show what is recorded
  top        Most viewed products or stores
  recent     Recent searches or recently viewed items
  interests  Interest categories (needs a catalog)
  summary    Aggregated summary as JSON
  export     Write the aggregated summary to a file
  clear      Delete recorded behavior`,
	}

	cmd.AddCommand(newBehaviorStatusCmd())
	cmd.AddCommand(newBehaviorTopCmd())
	cmd.AddCommand(newBehaviorRecentCmd())
	cmd.AddCommand(newBehaviorInterestsCmd())
	cmd.AddCommand(newBehaviorSummaryCmd())
	cmd.AddCommand(newBehaviorExportCmd())
	cmd.AddCommand(newBehaviorClearCmd())

	return cmd
}

// withApp opens the app around fn.
func withApp(cmd *cobra.Command, catalogPath string, fn func(a *app) error) error {
	a, err := openApp(cmd.ErrOrStderr(), catalogPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newBehaviorStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, "", func(a *app) error {
				return runBehaviorStatus(cmd.OutOrStdout(), a)
			})
		},
	}
}

func runBehaviorStatus(out io.Writer, a *app) error {
	snap := a.store.Read()

	state := "enabled"
	if !a.backend.Enabled() {
		state = "unavailable (nothing is persisted)"
	}

	fmt.Fprintln(out, "Behavior Status")
	fmt.Fprintln(out, "===============")
	fmt.Fprintf(out, "Storage:       %s, %s\n", a.backend.Name(), state)
	fmt.Fprintf(out, "Tracking:      %t\n", a.cfg.Tracking.Enabled)
	fmt.Fprintf(out, "Session:       %s\n", a.store.SessionID())
	fmt.Fprintf(out, "Products seen: %d\n", len(snap.ProductViews))
	fmt.Fprintf(out, "Stores seen:   %d\n", len(snap.StoreViews))
	fmt.Fprintf(out, "Searches:      %d (max %d)\n", len(snap.Searches), behavior.MaxSearches)
	fmt.Fprintf(out, "Clicks:        %d (max %d)\n", len(snap.Clicks), behavior.MaxClicks)
	fmt.Fprintf(out, "Cart actions:  %d (max %d)\n", len(snap.CartActions), behavior.MaxCartActions)
	return nil
}

func parseTargetType(kind string) (behavior.TargetType, error) {
	switch strings.ToLower(kind) {
	case "product", "products":
		return behavior.TargetProduct, nil
	case "store", "stores":
		return behavior.TargetStore, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want product or store)", kind)
	}
}

func newBehaviorTopCmd() *cobra.Command {
	var kind string
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Most viewed products or stores",
		Example: `  intent-rank behavior top
  intent-rank behavior top --kind store --limit 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTargetType(kind)
			if err != nil {
				return err
			}
			return withApp(cmd, "", func(a *app) error {
				printViewed(cmd.OutOrStdout(), "Most viewed", a.store.MostViewed(target, limit))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "product", "product or store")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum entries")
	return cmd
}

func newBehaviorRecentCmd() *cobra.Command {
	var views string
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Recent searches, or recently viewed items with --views",
		Example: `  intent-rank behavior recent
  intent-rank behavior recent --views product`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, "", func(a *app) error {
				out := cmd.OutOrStdout()
				if views != "" {
					target, err := parseTargetType(views)
					if err != nil {
						return err
					}
					printViewed(out, "Recently viewed", a.store.RecentlyViewed(target, limit))
					return nil
				}

				searches := a.store.RecentSearches(limit)
				fmt.Fprintf(out, "Recent searches (%d):\n", len(searches))
				for _, s := range searches {
					fmt.Fprintf(out, "  %s  %q  (%d results)\n", s.Timestamp.Local().Format("2006-01-02 15:04"), s.Query, s.ResultsCount)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&views, "views", "", "Show recently viewed product or store instead of searches")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum entries")
	return cmd
}

func printViewed(out io.Writer, title string, items []behavior.ViewedItem) {
	fmt.Fprintf(out, "%s (%d):\n", title, len(items))
	for i, it := range items {
		fmt.Fprintf(out, "  %d. %s  %d views, %ds total, last %s\n",
			i+1, it.ID, it.Metrics.ViewCount, it.Metrics.TotalDurationMs/1000,
			it.Metrics.LastViewed.Local().Format("2006-01-02 15:04"))
	}
}

func newBehaviorInterestsCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "interests",
		Short: "Interest categories derived from product views",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, catalogPath, func(a *app) error {
				if err := a.requireCatalog(); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				scores := a.store.InterestCategories(a.categoryLookup())
				fmt.Fprintf(out, "Interest categories (%d):\n", len(scores))
				for _, s := range scores {
					fmt.Fprintf(out, "  %-14s %.0f\n", s.Category, s.Score)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (default: catalog.path)")
	return cmd
}

func newBehaviorSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the aggregated summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, "", func(a *app) error {
				return writeJSON(cmd.OutOrStdout(), a.store.AggregatedSummary())
			})
		},
	}
}

func newBehaviorClearCmd() *cobra.Command {
	var searchesOnly bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded behavior",
		Example: `  intent-rank behavior clear
  intent-rank behavior clear --searches --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			what := "all recorded behavior"
			if searchesOnly {
				what = "the search history"
			}
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("This will delete %s. Continue? (y/N): ", what)) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}

			return withApp(cmd, "", func(a *app) error {
				if searchesOnly {
					a.store.ClearSearches()
				} else {
					a.store.ClearAll()
				}
				fmt.Fprintf(out, "✓ Cleared %s\n", what)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&searchesOnly, "searches", false, "Clear only the search history")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks prompt and accepts y or yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
