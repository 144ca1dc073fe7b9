package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/config"
	"github.com/uutislabs/kieli/content"
)

func newTranslateCmd() *cobra.Command {
	var (
		configPath string
		articleID  string
		sourceLang string
		targetLang string
		fromHTML   bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate an article from a file or stdin",
		Long: `Translate reads paragraphs (one per line) or an HTML document
(--html) and runs it through the engine: cache, quota, backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var input []byte
			if len(args) == 0 {
				input, err = io.ReadAll(os.Stdin)
			} else {
				input, err = os.ReadFile(args[0]) // #nosec G304 - CLI reads user-specified files
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			var paragraphs []string
			if fromHTML {
				paragraphs, err = content.ExtractParagraphs(string(input))
				if err != nil {
					return fmt.Errorf("extracting paragraphs: %w", err)
				}
			} else {
				for _, line := range strings.Split(string(input), "\n") {
					if line = strings.TrimSpace(line); line != "" {
						paragraphs = append(paragraphs, line)
					}
				}
			}
			if len(paragraphs) == 0 {
				return fmt.Errorf("no paragraphs found in input")
			}

			if articleID == "" {
				// Derive a stable id from the content itself.
				articleID = kieli.HashParagraphs(paragraphs)[:16]
			}

			translator, _, _, err := buildTranslator(cfg, newLogger())
			if err != nil {
				return err
			}

			result, err := translator.Translate(context.Background(), kieli.TranslateRequest{
				ArticleID:  articleID,
				SourceLang: sourceLang,
				TargetLang: targetLang,
				Paragraphs: paragraphs,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			for _, t := range result.Translations {
				fmt.Println(t)
			}
			if result.CacheHit {
				fmt.Fprintln(os.Stderr, "(served from cache)")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&articleID, "article-id", "", "content-scope id (default: derived from content)")
	cmd.Flags().StringVar(&sourceLang, "from", "", "source language code")
	cmd.Flags().StringVar(&targetLang, "to", "", "target language code")
	cmd.Flags().BoolVar(&fromHTML, "html", false, "treat input as HTML and extract paragraphs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output result as JSON")
	return cmd
}
