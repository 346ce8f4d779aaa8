package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newSourceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "source", Short: "Books, articles, videos, and podcasts tracked for reading/review"}
	cmd.AddCommand(newSourceListCmd(), newSourceAddCmd(), newSourceStatusCmd())
	return cmd
}

func newSourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sources, reading first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				all, err := v.AllSources()
				if err != nil {
					return err
				}
				for _, s := range all {
					fmt.Printf("%s\t%s\t%s\t%s (%d/5)\n", s.Path, s.Status, s.SourceType, s.Title, s.Rating)
				}
				return nil
			})
		},
	}
}

func newSourceAddCmd() *cobra.Command {
	var author, sourceType, status, notes string
	var rating int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new source record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				src, err := v.CreateSource(args[0], author, sourceType, status, rating, notes, time.Now())
				if err != nil {
					return err
				}
				fmt.Println(src.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author")
	cmd.Flags().StringVar(&sourceType, "type", "book", "book, article, video, or podcast")
	cmd.Flags().StringVar(&status, "status", "want_to_read", "want_to_read, reading, or finished")
	cmd.Flags().IntVar(&rating, "rating", 0, "rating 0-5")
	cmd.Flags().StringVar(&notes, "notes", "", "initial highlights/notes body text")
	return cmd
}

func newSourceStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <path> <want_to_read|reading|finished>",
		Short: "Update a source's reading status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				src, err := v.ReadSource(args[0])
				if err != nil {
					return err
				}
				src.Status = args[1]
				now := time.Now().Format("2006-01-02")
				if src.Status != "want_to_read" && src.Started == "" {
					src.Started = now
				}
				if src.Status == "finished" && src.Finished == "" {
					src.Finished = now
				}
				if err := v.SaveSource(src); err != nil {
					return err
				}
				fmt.Printf("%s -> %s\n", src.Path, src.Status)
				return nil
			})
		},
	}
}
