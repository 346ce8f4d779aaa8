package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newBookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "bookmarks", Short: "Manage bookmarked notes"}
	cmd.AddCommand(newBookmarksListCmd(), newBookmarksAddCmd(), newBookmarksRemoveCmd())
	return cmd
}

func newBookmarksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bookmarked notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				for _, b := range v.ListBookmarks() {
					fmt.Printf("%s\t%s\t%s\n", b.Path, b.Label, b.AddedAt)
				}
				return nil
			})
		},
	}
}

func newBookmarksAddCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Bookmark a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				return v.AddBookmark(args[0], label)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "optional label")
	return cmd
}

func newBookmarksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				return v.RemoveBookmark(args[0])
			})
		},
	}
}
