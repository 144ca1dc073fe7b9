// Command kieli runs the quota-aware news translation cache engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/uutislabs/kieli"
)

func main() {
	// Best effort: secrets may live in a local .env during development.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "kieli",
		Short:   "Kieli — quota-aware news translation cache engine",
		Version: kieli.FullVersion(),
	}

	root.AddCommand(
		newServeCmd(),
		newTranslateCmd(),
		newQuotaCmd(),
		newCleanupCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
