package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serumrl/map-engine/internal/mapfile"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Normalize a map file",
	Long:  `Parse a map file and re-emit it in canonical form: sorted items, explicit positions, stable ordering.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite the file in place instead of printing")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]

	data, err := os.ReadFile(path) // #nosec G304 // operator-supplied path
	if err != nil {
		return err
	}

	m, err := newParser(cfg).ParseString(string(data))
	if err != nil {
		return err
	}

	text, err := mapfile.NewWriter().WriteString(m)
	if err != nil {
		return err
	}

	if fmtWrite {
		return os.WriteFile(path, []byte(text), 0o644) // #nosec G306 // map files are not secrets
	}
	fmt.Print(text)
	return nil
}
