package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// modelsCmd lists the models the oracle knows for a brand.
var modelsCmd = &cobra.Command{
	Use:   "models [brand]",
	Short: "List known models of a brand",
	Long: `Asks the oracle for the model catalog of a brand, with production
years and body types.

Example:
  carspotter models Toyota`,
	Args: cobra.ExactArgs(1),
	RunE: runModels,
}

// typesCmd lists the vehicle body types the oracle knows.
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List known vehicle body types",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func runModels(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	models, err := svc.ListBrandModels(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Printf("No models found for %s\n", args[0])
		return nil
	}

	fmt.Printf("%-20s %-10s %s\n", "MODEL", "TYPE", "YEARS")
	for _, m := range models {
		fmt.Printf("%-20s %-10s %s\n", m.Name, m.Type, strings.Join(m.Years, ", "))
	}
	return nil
}

func runTypes(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	vtypes, err := svc.ListVehicleTypes(cmd.Context())
	if err != nil {
		return err
	}
	for _, t := range vtypes {
		fmt.Println(t)
	}
	return nil
}
