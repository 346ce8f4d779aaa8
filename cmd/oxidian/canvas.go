package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newCanvasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canvas <path>",
		Short: "Print a canvas file's nodes and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				c, err := v.LoadCanvas(args[0])
				if err != nil {
					return err
				}
				for _, n := range c.Nodes {
					fmt.Printf("node %s type=%s x=%.0f y=%.0f w=%.0f h=%.0f\n",
						n.ID, n.Type, n.X, n.Y, n.Width, n.Height)
				}
				for _, e := range c.Edges {
					fmt.Printf("edge %s %s -> %s\n", e.ID, e.FromNode, e.ToNode)
				}
				return nil
			})
		},
	}
}
