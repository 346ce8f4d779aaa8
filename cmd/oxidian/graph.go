package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the note link graph as an edge list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				g := v.BuildGraph()
				for _, n := range g.Nodes {
					fmt.Printf("node %s %s\n", n.ID, n.Name)
				}
				for _, e := range g.Edges {
					fmt.Printf("edge %s -> %s\n", e.Source, e.Target)
				}
				return nil
			})
		},
	}
}
