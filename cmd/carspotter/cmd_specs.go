package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carspotter/internal/types"
)

var (
	specsSave  bool
	specsImage string
	specsType  string
)

// specsCmd fetches the full specification for a manually named vehicle.
var specsCmd = &cobra.Command{
	Use:   "specs [brand] [model] [year]",
	Short: "Fetch the full specification of a vehicle",
	Long: `Asks the oracle for the complete specification of a vehicle named on
the command line, without needing a photograph.

Example:
  carspotter specs Toyota Corolla 2022 --save
  carspotter specs Honda Civic 2023 --save --image photos/civic.jpg`,
	Args: cobra.ExactArgs(3),
	RunE: runSpecs,
}

func init() {
	specsCmd.Flags().BoolVar(&specsSave, "save", false, "store the record after fetching")
	specsCmd.Flags().StringVar(&specsImage, "image", "", "attach an image file to the stored record")
	specsCmd.Flags().StringVar(&specsType, "type", "", "vehicle body type, e.g. Sedan or SUV")
}

func runSpecs(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[2])
	}
	ident := types.VehicleIdentification{
		Brand: args[0],
		Model: args[1],
		Year:  year,
		Type:  specsType,
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	spec, err := svc.FetchSpecification(cmd.Context(), ident)
	if err != nil {
		return err
	}
	printSpecification(spec)

	if !specsSave {
		return nil
	}

	var image []byte
	if specsImage != "" {
		image, err = os.ReadFile(specsImage)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if !strings.HasPrefix(http.DetectContentType(image), "image/") {
			return fmt.Errorf("%s does not look like an image", specsImage)
		}
	}
	if ident.Type == "" {
		ident.Type = spec.BasicInfo.Type
	}
	rec, err := svc.SaveRecord(ident, spec, image)
	if err != nil {
		return err
	}
	fmt.Printf("\nSaved as record %d\n", rec.ID)
	return nil
}

func printSpecification(spec types.VehicleSpecification) {
	fmt.Printf("%s %s (%d), %s\n", spec.BasicInfo.Brand, spec.BasicInfo.Model, spec.BasicInfo.Year, spec.BasicInfo.Type)

	fmt.Println("\nPerformance:")
	printField("Engine", spec.Performance.EngineSize)
	printField("Cylinders", spec.Performance.Cylinders)
	printField("Horsepower", spec.Performance.Horsepower)
	printField("Torque", spec.Performance.Torque)
	printField("Transmission", spec.Performance.Transmission)
	printField("Fuel type", spec.Performance.FuelType)
	printField("Fuel consumption", spec.Performance.FuelConsumption)
	printField("Top speed", spec.Performance.TopSpeed)
	printField("Acceleration", spec.Performance.Acceleration)

	fmt.Println("\nTechnical:")
	printField("Length", spec.TechnicalSpecs.Length)
	printField("Width", spec.TechnicalSpecs.Width)
	printField("Height", spec.TechnicalSpecs.Height)
	printField("Wheelbase", spec.TechnicalSpecs.Wheelbase)
	printField("Weight", spec.TechnicalSpecs.Weight)
	printField("Seating", spec.TechnicalSpecs.SeatingCapacity)
	printField("Trunk", spec.TechnicalSpecs.TrunkCapacity)

	fmt.Println("\nFeatures:")
	printField("Price range", spec.Features.PriceRange)
	printList("Safety", spec.Features.SafetyFeatures)
	printList("Comfort", spec.Features.ComfortFeatures)
	printList("Technology", spec.Features.TechnologyFeatures)
}

func printField(label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Printf("  %-18s %s\n", label+":", value)
}

func printList(label string, values []string) {
	if len(values) == 0 {
		fmt.Printf("  %-18s -\n", label+":")
		return
	}
	fmt.Printf("  %-18s %s\n", label+":", strings.Join(values, ", "))
}
