package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/schemafile"
	"github.com/aretw0/lattice/pkg/typegraph"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema.yaml> <data.json>",
	Short: "Check a JSON document against a schema",
	Long:  `Validates the data against the schema's type graph and prints every failure, grouped by the path where it occurred.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		g, value, err := loadSchemaAndData(args[0], args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if _, err := lattice.Validate.Call(g, value); err != nil {
			if inv, ok := invalid.As(err); ok {
				printInvalid(inv)
			} else {
				fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Println("Data is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func loadSchemaAndData(schemaPath, dataPath string) (typegraph.Node, any, error) {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return typegraph.Node{}, nil, fmt.Errorf("failed to read schema: %w", err)
	}
	g, err := schemafile.Parse(raw)
	if err != nil {
		return typegraph.Node{}, nil, err
	}
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return typegraph.Node{}, nil, fmt.Errorf("failed to read data: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return typegraph.Node{}, nil, fmt.Errorf("failed to parse data: %w", err)
	}
	return g, value, nil
}

// printInvalid renders the failure tree with the path in bold and the
// issue codes in red, one line per issue.
func printInvalid(inv *invalid.Invalid) {
	p := termenv.ColorProfile()
	printInvalidAt(p, "(root)", inv)
}

func printInvalidAt(p termenv.Profile, path string, inv *invalid.Invalid) {
	for _, issue := range inv.Issues() {
		fmt.Printf("%s: %s %s\n",
			termenv.String(path).Bold(),
			termenv.String(issue.Code).Foreground(p.Color("#f87171")),
			issue.Message,
		)
	}
	for _, edge := range inv.Edges() {
		child, ok := inv.Child(edge)
		if !ok {
			continue
		}
		printInvalidAt(p, path+"/"+edge, child)
	}
}
