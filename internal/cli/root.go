/*
Package cli implements the intent-rank command tree.

Every command loads configuration the same way (--config, then
INTENT_RANK_CONFIG, then ~/.intent-rank.yaml), opens the configured
storage backend and closes it before returning.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

var flags globalFlags

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "intent-rank",
		Short: "Spanish marketplace query analysis and behavior-aware recommendations",
		Long: `intent-rank reads a shopper's free-text query (Spanish), keeps a local
record of what they viewed, searched, clicked and added to the cart, and
ranks candidate products and stores by blending both signals.

Everything runs on the client: behavior lives in a local store (SQLite by
default) and never leaves the machine unless you export it.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: $INTENT_RANK_CONFIG or ~/.intent-rank.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewRecommendCmd())
	rootCmd.AddCommand(NewTrackCmd())
	rootCmd.AddCommand(NewBehaviorCmd())
	rootCmd.AddCommand(NewCatalogCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
