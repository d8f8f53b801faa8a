package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var detectSave bool

// detectCmd identifies the vehicle in a photograph and optionally saves it.
var detectCmd = &cobra.Command{
	Use:   "detect [image-file]",
	Short: "Identify the vehicle in a photograph",
	Long: `Sends the photograph to the oracle and prints the identified brand,
model, year and body type. With --save the full specification is fetched
and the record is stored.

Example:
  carspotter detect photos/street.jpg --save`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectSave, "save", false, "fetch the full specification and store the record")
}

func runDetect(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := http.DetectContentType(image)

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	ident, err := svc.DetectVehicle(ctx, image, mimeType)
	if err != nil {
		return err
	}

	fmt.Printf("Identified: %s %s (%d), %s\n", ident.Brand, ident.Model, ident.Year, ident.Type)

	if !detectSave {
		return nil
	}

	spec, err := svc.FetchSpecification(ctx, ident)
	if err != nil {
		return err
	}
	rec, err := svc.SaveRecord(ident, spec, image)
	if err != nil {
		return err
	}
	fmt.Printf("Saved as record %d\n", rec.ID)
	return nil
}
