package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the vault and keep the search index and caches live until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				if err := v.StartWatching(); err != nil {
					return err
				}
				defer v.StopWatching()
				fmt.Println("watching, press ctrl-c to stop")
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				<-ctx.Done()
				return nil
			})
		},
	}
}
