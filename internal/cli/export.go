package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/storage"
)

func newBehaviorExportCmd() *cobra.Command {
	var output string
	var anonymize bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the aggregated summary to a JSON file",
		Long: `Export the aggregated behavior summary (per-product and per-store rollups
and search term counts) for a sync job to pick up.

With --anonymize every search term is replaced by its SHA-256 hash.`,
		Example: `  # Export to the default location
  intent-rank behavior export

  # Custom path, hashed search terms
  intent-rank behavior export --output ./summary.json --anonymize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, "", func(a *app) error {
				return runExport(cmd.OutOrStdout(), a.store.AggregatedSummary(), output, anonymize)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: ~/.intent-rank/summary-<date>.json)")
	cmd.Flags().BoolVar(&anonymize, "anonymize", false, "Hash search terms")

	return cmd
}

func runExport(out io.Writer, summary behavior.Summary, output string, anonymize bool) error {
	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		output = filepath.Join(home, ".intent-rank", "summary-"+summary.Date+".json")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if anonymize {
		summary = anonymizeSummary(summary)
	}

	lockFile, err := acquireFileLock(output)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer releaseFileLock(lockFile)

	if err := writeSummary(summary, output); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Exported %d products, %d stores, %d search terms to %s\n",
		len(summary.Products), len(summary.Stores), len(summary.Searches), output)
	return nil
}

// anonymizeSummary hashes search terms; the counts are kept.
func anonymizeSummary(s behavior.Summary) behavior.Summary {
	searches := make([]behavior.SearchSummary, len(s.Searches))
	for i, term := range s.Searches {
		searches[i] = behavior.SearchSummary{Term: storage.HashQuery(term.Term), Count: term.Count}
	}
	s.Searches = searches
	return s
}

func writeSummary(summary behavior.Summary, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// acquireFileLock acquires an exclusive lock next to the export file.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another export in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()
	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()

	return os.Remove(lockPath)
}
