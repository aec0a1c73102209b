// Package config loads the engine configuration from YAML.
package config

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/serumrl/map-engine/internal/errors"
)

// Config is the root configuration.
type Config struct {
	Engine  Engine  `yaml:"engine"`
	Storage Storage `yaml:"storage"`
}

// Engine holds the gameplay policies.
type Engine struct {
	// ViewDistance is the default fog-of-war radius.
	ViewDistance int `yaml:"view_distance"`

	// AlertDecayDelay is the number of quiet alert recomputes before the
	// level starts dropping.
	AlertDecayDelay int `yaml:"alert_decay_delay"`

	// AllowStacking permits two blocking actors on one tile.
	AllowStacking bool `yaml:"allow_stacking"`
}

// Storage selects and configures the map repository backend.
type Storage struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend"`

	// Dir is the map directory for the file backend.
	Dir string `yaml:"dir"`

	// RedisAddr is the endpoint for the redis backend.
	RedisAddr string `yaml:"redis_addr"`

	// TTL expires redis-stored maps; zero keeps them forever.
	TTL Duration `yaml:"ttl"`
}

// Duration wraps time.Duration so YAML accepts "90s" or "1h30m" strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return errors.Wrap(err, "duration must be a string")
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.InvalidArgumentf("bad duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Backends accepted by Storage.Backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: Engine{
			ViewDistance:    8,
			AlertDecayDelay: 3,
		},
		Storage: Storage{
			Backend: BackendFile,
			Dir:     "maps",
		},
	}
}

// Load reads and validates a YAML configuration file. Absent fields keep
// their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) // #nosec G304 // path comes from the operator
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config %q", path)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %q", path)
	}
	return cfg, nil
}

// LoadFromReader decodes and validates a YAML config. Useful in tests where
// configs are string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is coherent.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine.ViewDistance < 1 {
		vb.InvalidField("engine.view_distance", "must be at least 1")
	}
	if c.Engine.AlertDecayDelay < 1 {
		vb.InvalidField("engine.alert_decay_delay", "must be at least 1")
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			vb.RequiredField("storage.dir")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			vb.RequiredField("storage.redis_addr")
		}
	default:
		vb.InvalidField("storage.backend", "must be file or redis")
	}

	return vb.Build()
}
