// Package main is the entry point for the mapctl tool
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serumrl/map-engine/internal/config"
	"github.com/serumrl/map-engine/internal/mapfile"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mapctl",
	Short: "Map state tooling",
	Long:  `mapctl validates, inspects, and moves map state files between local storage and Redis.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
}

// loadConfig returns the defaults when no --config flag was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newParser builds a parser honoring the configured stacking policy.
func newParser(cfg *config.Config) *mapfile.Parser {
	return mapfile.NewParser(&mapfile.ParserConfig{
		AllowStacking: cfg.Engine.AllowStacking,
	})
}
