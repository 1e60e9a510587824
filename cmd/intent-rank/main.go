/*
Package main is the entry point for the intent-rank CLI.

intent-rank analyzes Spanish marketplace search queries, records the
shopper's browsing behavior locally and ranks candidate products and stores
by blending the two.

Usage:
  intent-rank [command]

Available Commands:
  analyze     Analyze a Spanish search query
  recommend   Rank catalog products and stores for a query
  track       Record one interaction
  behavior    Inspect, export or clear recorded behavior
  catalog     Query the candidate catalog
  config      Create or show the configuration
  serve       Run the JSON-RPC server (stdio transport)
  verify      Verify configuration, storage and catalog
  version     Show version information

Examples:
  # What does a query ask for?
  intent-rank analyze "busco zapatillas baratas para hoy"

  # Rank a catalog
  intent-rank recommend --catalog catalog.json "celular gaming"

  # Embed in another process
  intent-rank serve --catalog catalog.json
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/intent-rank/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
