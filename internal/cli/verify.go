package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the 'verify' command.
func NewVerifyCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration, storage and catalog",
		Long: `Check that the configuration loads and validates, that the storage
backend can be opened, and that the catalog (if configured) parses.`,
		Example: `  intent-rank verify
  intent-rank verify --catalog catalog.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.OutOrStdout(), cmd, catalogPath)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (default: catalog.path)")
	return cmd
}

// runVerify reports each check; an unusable storage backend is a warning
// because every command still works without persistence.
func runVerify(out io.Writer, cmd *cobra.Command, catalogPath string) error {
	path, err := configFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	a, err := openApp(cmd.ErrOrStderr(), catalogPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer a.Close()

	fmt.Fprintf(out, "✓ Config: %s\n", path)

	if a.backend.Enabled() {
		fmt.Fprintf(out, "✓ Storage: %s\n", a.backend.Name())
	} else {
		fmt.Fprintf(out, "✗ Storage: %s unavailable, behavior will not persist\n", a.backend.Name())
	}

	if a.catalog == nil {
		fmt.Fprintln(out, "- Catalog: not configured")
		return nil
	}
	n, err := a.catalog.Count()
	if err != nil {
		return fmt.Errorf("catalog index error: %w", err)
	}
	fmt.Fprintf(out, "✓ Catalog: %d products, %d stores (%d indexed)\n", len(a.catalog.Products()), len(a.catalog.Stores()), n)
	return nil
}
