package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/uutislabs/kieli/cache"
	"github.com/uutislabs/kieli/config"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all cache entries as a portable JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := buildCacheManager(configPath)
			if err != nil {
				return err
			}

			exporter := cache.NewExporter(manager)
			metadata := map[string]string{"exported_by": "kieli export"}

			if outPath == "" || outPath == "-" {
				return exporter.Export(context.Background(), os.Stdout, metadata)
			}

			if err := exporter.ExportToFile(context.Background(), outPath, metadata); err != nil {
				return err
			}
			fmt.Printf("Exported cache to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Load cache entries from an exported snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := buildCacheManager(configPath)
			if err != nil {
				return err
			}

			result, err := cache.NewImporter(manager).ImportFromFile(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d entries", result.Imported)
			if result.Failed > 0 {
				fmt.Printf(", %d failed", result.Failed)
			}
			fmt.Println(".")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

// buildCacheManager wires a cache manager from configuration, without
// the rest of the engine.
func buildCacheManager(configPath string) (*cache.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.Translation.CacheTTLHours) * time.Hour
	return cache.NewManager(st, ttl, cache.WithLogger(newLogger())), nil
}
