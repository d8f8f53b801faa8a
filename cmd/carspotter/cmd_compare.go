package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// compareCmd compares two stored records.
var compareCmd = &cobra.Command{
	Use:   "compare [record-id-a] [record-id-b]",
	Short: "Compare two stored vehicles dimension by dimension",
	Long: `Asks the oracle to compare two stored vehicles. Both records must
exist and must describe different vehicles.

Example:
  carspotter compare 1 2`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	idA, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record ID %q", args[0])
	}
	idB, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record ID %q", args[1])
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := svc.CompareRecords(cmd.Context(), idA, idB)
	if err != nil {
		return err
	}

	// Both records exist once the comparison succeeded.
	recA, err := svc.GetRecord(idA)
	if err != nil {
		return err
	}
	recB, err := svc.GetRecord(idB)
	if err != nil {
		return err
	}

	nameA := fmt.Sprintf("%s %s (%d)", recA.Identification.Brand, recA.Identification.Model, recA.Identification.Year)
	nameB := fmt.Sprintf("%s %s (%d)", recB.Identification.Brand, recB.Identification.Model, recB.Identification.Year)
	fmt.Printf("Comparing [%d] %s vs [%d] %s\n", idA, nameA, idB, nameB)

	// Stable output order, with the recommendation last.
	keys := make([]string, 0, len(report.Dimensions))
	for key := range report.Dimensions {
		if key != "final_recommendation" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if _, ok := report.Dimensions["final_recommendation"]; ok {
		keys = append(keys, "final_recommendation")
	}

	for _, key := range keys {
		dim := report.Dimensions[key]
		fmt.Printf("\n%s\n", dimensionTitle(key))
		if dim.VehicleA != "" || dim.VehicleB != "" {
			fmt.Printf("  A: %s\n  B: %s\n", dim.VehicleA, dim.VehicleB)
		}
		winner := dim.Winner
		switch winner {
		case "vehicle_a":
			winner = nameA
		case "vehicle_b":
			winner = nameB
		}
		if winner != "" {
			fmt.Printf("  Winner: %s\n", winner)
		}
		if dim.Reason != "" {
			fmt.Printf("  Reason: %s\n", dim.Reason)
		}
	}
	return nil
}

// dimensionTitle turns a dimension key like "final_recommendation" into
// "Final Recommendation".
func dimensionTitle(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
