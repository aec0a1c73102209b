package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serumrl/map-engine/internal/mapfile"
	"github.com/serumrl/map-engine/internal/repositories/mapstate"
)

var (
	pullRedisAddr string
	pullOutput    string
)

var pullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Download a map from Redis",
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func init() {
	pullCmd.Flags().StringVar(&pullRedisAddr, "redis", "localhost:6379", "redis endpoint")
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "write to file instead of stdout")
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := pullRedisAddr
	if !cmd.Flags().Changed("redis") && cfg.Storage.RedisAddr != "" {
		addr = cfg.Storage.RedisAddr
	}

	repo, err := redisRepo(addr, 0)
	if err != nil {
		return err
	}

	out, err := repo.Get(cmd.Context(), mapstate.GetInput{Name: args[0]})
	if err != nil {
		return err
	}

	text, err := mapfile.NewWriter().WriteString(out.State)
	if err != nil {
		return err
	}

	if pullOutput != "" {
		return os.WriteFile(pullOutput, []byte(text), 0o644) // #nosec G306 // map files are not secrets
	}
	fmt.Print(text)
	return nil
}
