// Command oxidian is a thin cobra-based host for the Command Surface:
// every subcommand opens a vault.Vault and delegates straight to it.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

var vaultFlag string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oxidian",
		Short: "Markdown vault engine: search, link integrity, spaced repetition, encryption",
	}
	root.PersistentFlags().StringVar(&vaultFlag, "vault", "", "vault name or path (falls back to $VLT_VAULT_PATH)")

	root.AddCommand(
		newNoteCmd(),
		newSearchCmd(),
		newTagsCmd(),
		newCardCmd(),
		newSourceCmd(),
		newDailyCmd(),
		newCanvasCmd(),
		newBookmarksCmd(),
		newSettingsCmd(),
		newSnapshotCmd(),
		newEncryptCmd(),
		newReindexCmd(),
		newGraphCmd(),
		newWatchCmd(),
		newImportCmd(),
	)
	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// openVault resolves vaultFlag to a directory and opens it. Every
// subcommand's RunE calls this first.
func openVault() (*vault.Vault, error) {
	name := vaultFlag
	if name == "" {
		name = os.Getenv("VLT_VAULT_PATH")
	}
	if name == "" {
		return nil, fmt.Errorf("no vault specified: pass --vault or set VLT_VAULT_PATH")
	}

	dir, err := vault.ResolveVaultDir(name)
	if err != nil {
		return nil, err
	}
	return vault.Open(dir, newLogger())
}

// withVault opens the vault, runs fn, and closes the vault afterward
// regardless of fn's outcome.
func withVault(fn func(v *vault.Vault) error) error {
	v, err := openVault()
	if err != nil {
		return err
	}
	defer v.Close()
	return fn(v)
}
