package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "View or patch vault settings"}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsPatchCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				s := v.GetSettings()
				fmt.Printf("%+v\n", s)
				return nil
			})
		},
	}
}

func newSettingsPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patch",
		Short: "Merge a JSON patch (piped via stdin) into settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			return withVault(func(v *vault.Vault) error {
				s, err := v.PatchSettings(patch)
				if err != nil {
					return err
				}
				fmt.Printf("%+v\n", s)
				return nil
			})
		},
	}
}
