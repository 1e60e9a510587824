package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/behavior"
)

// NewTrackCmd creates the 'track' command.
func NewTrackCmd() *cobra.Command {
	var (
		duration time.Duration
		results  int
		context  string
		store    bool
		remove   bool
	)

	cmd := &cobra.Command{
		Use:   "track <view|store-view|search|click|cart> <id|query>",
		Short: "Record one interaction",
		Long: `Record a product or store view, a search, a click or a cart change in
the local behavior store.`,
		Example: `  intent-rank track view p-1 --duration 45s
  intent-rank track store-view s-2
  intent-rank track search "zapatillas running" --results 12
  intent-rank track click p-3 --context home
  intent-rank track click s-1 --store
  intent-rank track cart p-1
  intent-rank track cart p-1 --remove`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := behavior.ParseEventKind(args[0])
			if err != nil {
				return err
			}

			e := behavior.Event{Kind: kind}
			target := strings.Join(args[1:], " ")
			switch kind {
			case behavior.EventSearch:
				e.Query = target
				e.ResultsCount = results
			case behavior.EventProductClick:
				e.TargetID = target
				e.Context = context
				if store {
					e.Kind = behavior.EventStoreClick
				}
			case behavior.EventAddToCart:
				e.TargetID = target
				if remove {
					e.Kind = behavior.EventRemoveFromCart
				}
			default:
				e.TargetID = target
				e.Duration = duration
				e.Context = context
			}

			a, err := openApp(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			return runTrack(cmd.OutOrStdout(), a, e)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Time spent on a viewed item (e.g. 30s)")
	cmd.Flags().IntVar(&results, "results", 0, "Result count of a search")
	cmd.Flags().StringVar(&context, "context", "", "Where a click happened")
	cmd.Flags().BoolVar(&store, "store", false, "The clicked id is a store")
	cmd.Flags().BoolVar(&remove, "remove", false, "Record a removal from the cart")

	return cmd
}

func runTrack(out io.Writer, a *app, e behavior.Event) error {
	if !a.cfg.Tracking.Enabled {
		fmt.Fprintln(out, "Tracking is disabled (tracking.enabled: false); nothing recorded.")
		return nil
	}
	if err := a.store.Record(e); err != nil {
		return err
	}

	target := e.TargetID
	if e.Kind == behavior.EventSearch {
		target = fmt.Sprintf("%q", e.Query)
	}
	fmt.Fprintf(out, "✓ Tracked %s %s\n", e.Kind, target)
	return nil
}
