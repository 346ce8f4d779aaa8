package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/importer"
	"github.com/oxidian/engine/internal/vault"
)

func newImportCmd() *cobra.Command {
	var format, defaultSource string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import Kindle clippings, a Readwise CSV export, Markdown blockquotes, or plain text as Sources + Cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			f := importer.Format(format)
			if format == "" {
				f = guessImportFormat(args[0])
			}

			entries := importer.ParseContent(string(raw), f, filepath.Base(args[0]))
			if len(entries) == 0 {
				fmt.Println("no highlights found")
				return nil
			}

			return withVault(func(v *vault.Vault) error {
				result := v.ImportHighlights(entries, defaultSource, time.Now())
				fmt.Printf("sources created: %d\ncards created: %d\n", result.SourcesCreated, result.CardsCreated)
				for _, e := range result.Errors {
					fmt.Println("error:", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "kindle, readwise, markdown, or plain_text (guessed from the filename if omitted)")
	cmd.Flags().StringVar(&defaultSource, "default-source", "", "source title for entries with no title of their own (default: Imported Notes)")
	return cmd
}

// guessImportFormat picks a format from the file's name when --format
// is omitted: Kindle's canonical export is always named
// "My Clippings.txt", a Readwise export is a .csv file, and anything
// ending .md is treated as Markdown blockquotes. Everything else falls
// back to plain text, one highlight per line.
func guessImportFormat(path string) importer.Format {
	name := filepath.Base(path)
	switch {
	case name == "My Clippings.txt":
		return importer.FormatKindle
	case filepath.Ext(name) == ".csv":
		return importer.FormatReadwise
	case filepath.Ext(name) == ".md":
		return importer.FormatMarkdown
	default:
		return importer.FormatPlainText
	}
}
