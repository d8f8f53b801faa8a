package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// listCmd prints all stored records.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored vehicle records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// deleteCmd removes one stored record.
var deleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete a stored vehicle record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := svc.ListRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No vehicles stored yet.")
		return nil
	}

	fmt.Printf("%-6s %-14s %-16s %-6s %-10s %s\n", "ID", "BRAND", "MODEL", "YEAR", "TYPE", "IMAGE")
	for _, rec := range records {
		image := "-"
		if len(rec.Image) > 0 {
			image = fmt.Sprintf("%d bytes", len(rec.Image))
		}
		fmt.Printf("%-6d %-14s %-16s %-6d %-10s %s\n",
			rec.ID,
			rec.Identification.Brand,
			rec.Identification.Model,
			rec.Identification.Year,
			rec.Identification.Type,
			image)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record ID %q", args[0])
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	removed, err := svc.DeleteRecord(id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Printf("Record %d deleted\n", id)
	} else {
		fmt.Printf("Record %d was not present\n", id)
	}
	return nil
}
