package main

import (
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the journey step graph as Mermaid flowchart syntax",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		wizard, err := arbor.NewFromFile(file)
		if err != nil {
			return err
		}

		fmt.Print(graph.GenerateMermaid(wizard.Steps(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
