package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "note", Short: "Read, save, delete, and rename notes"}
	cmd.AddCommand(newNoteReadCmd(), newNoteSaveCmd(), newNoteDeleteCmd(), newNoteRenameCmd(), newNoteRenderCmd())
	return cmd
}

func newNoteReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <path-or-title>",
		Short: "Print a note's content, decrypting transparently if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				rel, err := resolveTarget(v, args[0])
				if err != nil {
					return err
				}
				content, err := v.ReadNote(rel)
				if err != nil {
					return err
				}
				v.NavPush(rel)
				fmt.Println(content)
				return nil
			})
		},
	}
}

func newNoteSaveCmd() *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Write a note's content, encrypting first if enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if fromStdin {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				content = string(data)
			} else {
				return fmt.Errorf("pass --stdin and pipe the note content in")
			}
			return withVault(func(v *vault.Vault) error {
				return v.SaveNote(args[0], content)
			})
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read content from stdin")
	return cmd
}

func newNoteDeleteCmd() *cobra.Command {
	var trash bool
	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a note, or move it to trash with --trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				if trash {
					_, err := v.TrashEntry(args[0])
					return err
				}
				return v.DeleteNote(args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&trash, "trash", false, "move to .trash instead of deleting")
	return cmd
}

func newNoteRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Move a note and rewrite wiki-links that pointed at it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				result, err := v.RenameWithLinkUpdate(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Printf("renamed %s -> %s (updated %d file(s), %d failed)\n",
					result.OldPath, result.NewPath, len(result.UpdatedFiles), len(result.FailedFiles))
				for _, f := range result.FailedFiles {
					fmt.Printf("  failed to rewrite links in: %s\n", f)
				}
				return nil
			})
		},
	}
}

func newNoteRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <path>",
		Short: "Render a note to sanitized HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				html, err := v.RenderNote(args[0])
				if err != nil {
					return err
				}
				fmt.Println(html)
				return nil
			})
		},
	}
}

// resolveTarget treats target as a vault-relative path if it ends in .md;
// otherwise resolves it as a title.
func resolveTarget(v *vault.Vault, target string) (string, error) {
	if len(target) > 3 && target[len(target)-3:] == ".md" {
		return target, nil
	}
	return v.ResolveNote(target)
}
