package mapstate

import (
	"context"
	"sort"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/mapfile"
	redisclient "github.com/serumrl/map-engine/internal/redis"
)

const (
	mapKeyPrefix = "map:"

	// Error messages
	errStateNil  = "map state cannot be nil"
	errNameEmpty = "map name cannot be empty"
)

// RedisConfig holds the dependencies for the Redis-backed repository.
type RedisConfig struct {
	Client redisclient.Client

	// TTL expires stored maps; zero keeps them forever.
	TTL time.Duration
}

// Validate ensures the configuration is usable.
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
	parser *mapfile.Parser
	writer *mapfile.Writer
}

// NewRedisRepository creates a Redis-backed map repository. Maps are stored
// as serialized text under map:<name>.
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid redis repository config")
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    cfg.TTL,
		parser: mapfile.NewParser(nil),
		writer: mapfile.NewWriter(),
	}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.State == nil {
		return nil, errors.InvalidArgument(errStateNil)
	}
	if input.State.Metadata.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	text, err := r.writer.WriteString(input.State)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize map %q", input.State.Metadata.Name)
	}

	key := mapKeyPrefix + input.State.Metadata.Name
	if err := r.client.Set(ctx, key, text, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save map %q", input.State.Metadata.Name)
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := mapKeyPrefix + input.Name
	text, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("map %q not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to get map %q", input.Name)
	}

	state, err := r.parser.ParseString(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse stored map %q", input.Name)
	}

	return &GetOutput{State: state}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	var names []string
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, mapKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan map keys")
		}
		for _, key := range keys {
			names = append(names, strings.TrimPrefix(key, mapKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(names)
	return &ListOutput{Names: names}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := mapKeyPrefix + input.Name
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete map %q", input.Name)
	}
	if deleted == 0 {
		return nil, errors.NotFoundf("map %q not found", input.Name)
	}

	return &DeleteOutput{}, nil
}
