package main

import (
	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text search index from the notes on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				return v.Reindex()
			})
		},
	}
}
