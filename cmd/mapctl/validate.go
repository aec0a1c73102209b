package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/serumrl/map-engine/internal/mapfile"
)

var validateWorkers int

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate map files",
	Long:  `Parse each map file and check its invariants: grid shape, stairs symmetry, and ledger consistency.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateWorkers, "workers", 4, "number of files to validate in parallel")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	parser := newParser(cfg)

	var g errgroup.Group
	g.SetLimit(validateWorkers)

	for _, path := range args {
		path := path
		g.Go(func() error {
			if err := validateFile(parser, path); err != nil {
				fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
				return fmt.Errorf("%s failed validation", path)
			}
			fmt.Printf("OK   %s\n", path)
			return nil
		})
	}

	return g.Wait()
}

func validateFile(parser *mapfile.Parser, path string) error {
	f, err := os.Open(path) // #nosec G304 // operator-supplied path
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = parser.Parse(f)
	return err
}
