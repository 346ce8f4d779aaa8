package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/search"
	"github.com/oxidian/engine/internal/vault"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var suggest, fuzzy bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				var results []search.Result
				var err error
				switch {
				case suggest:
					results, err = v.SearchSuggest(args[0])
				case fuzzy:
					results, err = v.FuzzySearch(args[0])
				default:
					results, err = v.SearchNotes(args[0], limit)
				}
				if err != nil {
					return err
				}
				printResults(results)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "top 5 results for live-typing")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "prefix match")
	return cmd
}

func printResults(results []search.Result) {
	if len(results) == 0 {
		fmt.Println("no results")
		return
	}
	for _, r := range results {
		fmt.Printf("%s (%.2f)\n  %s\n", r.Path, r.Score, r.Snippet)
	}
}
