package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	redisclient "github.com/serumrl/map-engine/internal/redis"
	"github.com/serumrl/map-engine/internal/repositories/mapstate"
)

var (
	pushRedisAddr string
	pushTTL       time.Duration
)

var pushCmd = &cobra.Command{
	Use:   "push <file>...",
	Short: "Upload map files to Redis",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPush,
}

func init() {
	pushCmd.Flags().StringVar(&pushRedisAddr, "redis", "localhost:6379", "redis endpoint")
	pushCmd.Flags().DurationVar(&pushTTL, "ttl", 0, "expiry for pushed maps, 0 keeps them forever")
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := pushRedisAddr
	if !cmd.Flags().Changed("redis") && cfg.Storage.RedisAddr != "" {
		addr = cfg.Storage.RedisAddr
	}
	ttl := pushTTL
	if !cmd.Flags().Changed("ttl") {
		ttl = cfg.Storage.TTL.Std()
	}

	repo, err := redisRepo(addr, ttl)
	if err != nil {
		return err
	}

	parser := newParser(cfg)
	for _, path := range args {
		data, err := os.ReadFile(path) // #nosec G304 // operator-supplied path
		if err != nil {
			return err
		}

		m, err := parser.ParseString(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if _, err := repo.Save(cmd.Context(), mapstate.SaveInput{State: m}); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("pushed %s as %q\n", path, m.Metadata.Name)
	}
	return nil
}

func redisRepo(addr string, ttl time.Duration) (mapstate.Repository, error) {
	client, err := redisclient.NewClient(addr, nil)
	if err != nil {
		return nil, err
	}
	return mapstate.NewRedisRepository(&mapstate.RedisConfig{Client: client, TTL: ttl})
}
