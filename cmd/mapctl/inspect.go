package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serumrl/map-engine/internal/entities"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a map file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0]) // #nosec G304 // operator-supplied path
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := newParser(cfg).Parse(f)
	if err != nil {
		return err
	}

	fmt.Printf("name:        %s\n", m.Metadata.Name)
	fmt.Printf("type:        %s\n", m.Metadata.Type)
	fmt.Printf("alert level: %d\n", m.AlertLevel)
	fmt.Printf("floors:      %d\n", m.FloorCount())

	for _, floor := range m.Floors() {
		doors := 0
		cameras := 0
		for _, o := range floor.Objects() {
			switch o.Kind {
			case entities.ObjectDoor:
				doors++
			case entities.ObjectSecurityDevice:
				cameras++
			}
		}
		fmt.Printf("  floor %d: %dx%d, %d entities, %d objects (%d doors, %d devices), zones: %s\n",
			floor.Number(), floor.Width(), floor.Height(),
			len(floor.Entities()), len(floor.Objects()), doors, cameras,
			zoneSummary(floor.ZoneNames()))
	}

	if n := len(m.Ledger.Transformed); n > 0 {
		fmt.Printf("transformed: %s\n", strings.Join(entities.SortedIDs(m.Ledger.Transformed), ", "))
	}
	if n := len(m.Ledger.DisabledDevices); n > 0 {
		fmt.Printf("disabled:    %s\n", strings.Join(entities.SortedIDs(m.Ledger.DisabledDevices), ", "))
	}
	return nil
}

func zoneSummary(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
