package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Open (or create) today's daily note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				path, content, err := v.OpenDailyNote(time.Now(), "Daily", "YYYY-MM-DD", "# {{title}}\n\n")
				if err != nil {
					return err
				}
				fmt.Println(path)
				fmt.Println(content)
				return nil
			})
		},
	}
}
