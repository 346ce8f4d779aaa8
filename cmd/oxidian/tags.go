package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tags", Short: "Tag listing, autocomplete, and backlinks"}
	cmd.AddCommand(newTagsListCmd(), newTagsAutocompleteCmd(), newBacklinksCmd())
	return cmd
}

func newTagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tag in the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				fmt.Println(strings.Join(v.GetTags(), "\n"))
				return nil
			})
		},
	}
}

func newTagsAutocompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autocomplete <prefix>",
		Short: "List tags starting with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				fmt.Println(strings.Join(v.TagAutocomplete(args[0]), "\n"))
				return nil
			})
		},
	}
}

func newBacklinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backlinks <path>",
		Short: "List notes that link to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				fmt.Println(strings.Join(v.GetBacklinks(args[0]), "\n"))
				return nil
			})
		},
	}
}
