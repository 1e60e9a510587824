package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

// NewAnalyzeCmd creates the 'analyze' command.
func NewAnalyzeCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Analyze a Spanish search query",
		Long: `Extract categories, intent, sentiment, urgency, price range and sale type
from a free-text query. No behavior is read or recorded.`,
		Example: `  intent-rank analyze "busco un celular barato entre 100000 y 300000"
  intent-rank analyze --json "necesito un sofá urgente con envío"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: "warn", Output: cmd.ErrOrStderr()})
			return runAnalyze(cmd.OutOrStdout(), strings.Join(args, " "), jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runAnalyze(out io.Writer, query string, jsonOutput bool) error {
	a := textanalysis.Analyze(query)

	if jsonOutput {
		return writeJSON(out, a)
	}

	fmt.Fprintf(out, "Query:      %s\n", query)
	fmt.Fprintf(out, "Categories: %s\n", orNone(strings.Join(a.Categories, ", ")))
	fmt.Fprintf(out, "Intent:     %s\n", a.Intent)
	fmt.Fprintf(out, "Sentiment:  %s\n", a.Sentiment)
	fmt.Fprintf(out, "Urgency:    %.1f\n", a.Urgency)
	fmt.Fprintf(out, "Price:      %s\n", formatPriceRange(a.PriceRange))
	fmt.Fprintf(out, "Sale type:  %s\n", orNone(string(a.SaleType)))
	fmt.Fprintf(out, "Keywords:   %s\n", orNone(strings.Join(textanalysis.Keywords(query), ", ")))
	return nil
}

func formatPriceRange(r *textanalysis.PriceRange) string {
	if r == nil {
		return "-"
	}
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%.0f - %.0f", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf(">= %.0f", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("<= %.0f", *r.Max)
	default:
		return "-"
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
