package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Create, list, and restore note snapshots"}
	cmd.AddCommand(newSnapshotCreateCmd(), newSnapshotListCmd(), newSnapshotRestoreCmd())
	return cmd
}

func newSnapshotCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <path>",
		Short: "Snapshot a note's current content before overwriting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				ts, err := v.CreateSnapshot(args[0])
				if err != nil {
					return err
				}
				fmt.Println(ts)
				return nil
			})
		},
	}
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>",
		Short: "List snapshots of a note, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				infos, err := v.ListSnapshots(args[0])
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Printf("%s\t%s\n", info.Timestamp, info.Path)
				}
				return nil
			})
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <path> <timestamp>",
		Short: "Restore a note from a prior snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				return v.RestoreSnapshot(args[0], args[1])
			})
		},
	}
}
