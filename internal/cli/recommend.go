package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/recommend"
)

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd() *cobra.Command {
	var (
		catalogPath string
		limit       int
		jsonOutput  bool
		noTrack     bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Rank catalog products and stores for a query",
		Long: `Search the catalog for candidates, then rank them by what the query asks
for and what the recorded behavior says. The query is recorded as a search
unless --no-track is given or tracking is disabled.`,
		Example: `  intent-rank recommend --catalog catalog.json "celular gaming"
  intent-rank recommend --limit 3 --json "zapatillas para correr"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.ErrOrStderr(), catalogPath)
			if err != nil {
				return err
			}
			defer a.Close()

			return runRecommend(cmd.OutOrStdout(), a, strings.Join(args, " "), limit, jsonOutput, !noTrack)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (default: catalog.path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results per list (default: recommend.default_limit)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "Do not record the query as a search")

	return cmd
}

func runRecommend(out io.Writer, a *app, query string, limit int, jsonOutput, track bool) error {
	if err := a.requireCatalog(); err != nil {
		return err
	}

	products, stores, err := a.catalog.Candidates(query, 0)
	if err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}

	res := a.scorer().Generate(query, products, stores, limit)

	if track && a.cfg.Tracking.Enabled {
		a.store.TrackSearch(query, len(res.Products)+len(res.Stores))
	}

	if jsonOutput {
		return writeJSON(out, res)
	}
	printResult(out, res)
	return nil
}

func printResult(out io.Writer, res recommend.Result) {
	fmt.Fprintln(out, res.Explanation)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Products (%d):\n", len(res.Products))
	for i, r := range res.Products {
		fmt.Fprintf(out, "  %d. %s [%s]  score %.1f  confidence %.2f\n", i+1, r.Product.Name, r.Product.ID, r.Score, r.Confidence)
		if len(r.Reasons) > 0 {
			fmt.Fprintf(out, "     %s\n", strings.Join(r.Reasons, "; "))
		}
	}

	fmt.Fprintf(out, "\nStores (%d):\n", len(res.Stores))
	for i, r := range res.Stores {
		fmt.Fprintf(out, "  %d. %s [%s]  score %.1f  confidence %.2f\n", i+1, r.Store.Name, r.Store.ID, r.Score, r.Confidence)
		if len(r.Reasons) > 0 {
			fmt.Fprintf(out, "     %s\n", strings.Join(r.Reasons, "; "))
		}
	}
}
