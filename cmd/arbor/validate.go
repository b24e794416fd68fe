package main

import (
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a journey definition for configuration and graph problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		wizard, err := arbor.NewFromFile(file)
		if err != nil {
			return fmt.Errorf("definition is invalid: %w", err)
		}

		if err := validator.ValidateGraph(wizard.Steps()); err != nil {
			return fmt.Errorf("graph is unsound: %w", err)
		}

		fmt.Printf("OK: %d steps, %d fields\n", len(wizard.Steps()), len(wizard.Fields()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
