package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/pkg/schemafile"
	"github.com/aretw0/lattice/pkg/typegraph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <schema.yaml>",
	Short: "Render a schema's type graph as text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		g, err := schemafile.Parse(raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(typegraph.Render(g, false))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
