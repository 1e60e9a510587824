package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/catalog"
)

// NewCatalogCmd creates the catalog command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the candidate catalog",
	}
	cmd.AddCommand(newCatalogSearchCmd())
	return cmd
}

func newCatalogSearchCmd() *cobra.Command {
	var catalogPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over catalog products and stores",
		Long: `Run the catalog's full-text index without any behavior ranking. These are
the candidates 'recommend' would score. A query with no matches lists the
whole catalog.`,
		Example: `  intent-rank catalog search --catalog catalog.json celular`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, catalogPath, func(a *app) error {
				if err := a.requireCatalog(); err != nil {
					return err
				}
				return runCatalogSearch(cmd.OutOrStdout(), a.catalog, strings.Join(args, " "), limit)
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (default: catalog.path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", catalog.DefaultSearchLimit, "Maximum hits")
	return cmd
}

func runCatalogSearch(out io.Writer, c *catalog.Catalog, query string, limit int) error {
	products, stores, err := c.Candidates(query, limit)
	if err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}

	fmt.Fprintf(out, "Products (%d):\n", len(products))
	for _, p := range products {
		fmt.Fprintf(out, "  %-10s %s  [%s]  $%.0f\n", p.ID, p.Name, orNone(p.Category), p.Price)
	}
	fmt.Fprintf(out, "Stores (%d):\n", len(stores))
	for _, s := range stores {
		fmt.Fprintf(out, "  %-10s %s  [%s]  %.1f★\n", s.ID, s.Name, orNone(strings.Join(s.Categories, ", ")), s.Rating)
	}
	return nil
}
