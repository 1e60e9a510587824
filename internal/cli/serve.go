package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/rpc"
)

// NewServeCmd creates the 'serve' command.
func NewServeCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-RPC server (stdio transport)",
		Long: `Start intent-rank as a line-delimited JSON-RPC 2.0 server on stdin/stdout,
so a host application can embed it as a child process.

Methods:
  • analyze, recommend, track
  • behavior.read, behavior.mostViewed, behavior.recentSearches
  • behavior.interests, behavior.affinity, behavior.summary
  • behavior.clear, behavior.clearSearches, session.id

Tracked events are queued and written in batches; the queue is flushed
before every read and on shutdown.`,
		Example: `  intent-rank serve --catalog catalog.json

  echo '{"jsonrpc":"2.0","id":1,"method":"analyze","params":{"query":"celular barato"}}' | intent-rank serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, catalogPath)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (default: catalog.path)")
	return cmd
}

// runServe serves stdio until stdin closes or a signal arrives.
func runServe(cmd *cobra.Command, catalogPath string) error {
	a, err := openApp(cmd.ErrOrStderr(), catalogPath)
	if err != nil {
		return err
	}
	defer a.Close()

	tracker := behavior.NewTracker(a.store, a.cfg.Tracking.QueueSize)
	if !a.cfg.Tracking.Enabled {
		tracker.Disable()
	}
	defer tracker.Stop()

	server := rpc.NewServer(rpc.Deps{
		Store:         a.store,
		Tracker:       tracker,
		Scorer:        a.scorer(),
		Catalog:       a.catalog,
		TrackSearches: a.cfg.Tracking.Enabled,
	})

	log := logging.Component("serve")
	log.Info().
		Str("storage", a.backend.Name()).
		Bool("tracking", a.cfg.Tracking.Enabled).
		Bool("catalog", a.catalog != nil).
		Msg("serving JSON-RPC on stdio")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
