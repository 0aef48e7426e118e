package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/invalid"
)

var convertCmd = &cobra.Command{
	Use:   "convert <schema.yaml> <data.json>",
	Short: "Normalize a JSON document through the schema",
	Long: `Deserializes the data against the schema (reporting malformed input
the same way validate does) and serializes it back, printing the canonical
form to stdout.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		g, value, err := loadSchemaAndData(args[0], args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		loaded, err := lattice.Undictify.Call(g, value)
		if err == nil {
			var out any
			out, err = lattice.Dictify.Call(g, loaded)
			if err == nil {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				return
			}
		}
		if inv, ok := invalid.As(err); ok {
			printInvalid(inv)
		} else {
			fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		}
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
