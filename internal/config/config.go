// Package config loads the waypoint command settings from a YAML (or JSON)
// file and WAYPOINT_* environment variables. Environment values win.
//
//	port: 8080
//	log_level: debug
//	transition_delay: 150ms
//	session_ttl: 30m
//	templates:
//	  dir: ./templates
//	redis:
//	  addr: localhost:6379
//	  ttl: 2h
//	  encryption_key: <base64 of 32 random bytes>
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	redisAdapter "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "waypoint.yaml"

// EnvPrefix namespaces every environment override.
const EnvPrefix = "WAYPOINT_"

// Config holds every setting the commands share.
type Config struct {
	Port            string        `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	TransitionDelay time.Duration `mapstructure:"transition_delay"`
	SubmitDelay     time.Duration `mapstructure:"submit_delay"`
	StarterTour     bool          `mapstructure:"starter_tour"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`

	Templates TemplatesConfig `mapstructure:"templates"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// TemplatesConfig points at extra quick templates.
// Dir is a Loam directory of markdown files, File a YAML or JSON catalog.
type TemplatesConfig struct {
	Dir  string `mapstructure:"dir"`
	File string `mapstructure:"file"`
}

// RedisConfig enables the shared session store when Addr is set.
// EncryptionKey (base64, 32 bytes) seals every stored snapshot; FallbackKeys
// still decrypt snapshots written before a rotation.
type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	EncryptionKey string        `mapstructure:"encryption_key"`
	FallbackKeys  []string      `mapstructure:"fallback_keys"`
}

// env maps each override to its key path in the file.
var env = map[string][]string{
	"PORT":             {"port"},
	"LOG_LEVEL":        {"log_level"},
	"LOG_FORMAT":       {"log_format"},
	"TRANSITION_DELAY": {"transition_delay"},
	"SUBMIT_DELAY":     {"submit_delay"},
	"STARTER_TOUR":     {"starter_tour"},
	"SESSION_TTL":      {"session_ttl"},
	"TEMPLATES_DIR":    {"templates", "dir"},
	"TEMPLATES_FILE":   {"templates", "file"},
	"REDIS_ADDR":       {"redis", "addr"},
	"REDIS_PREFIX":     {"redis", "prefix"},
	"REDIS_TTL":        {"redis", "ttl"},
	"REDIS_LOCK_TTL":   {"redis", "lock_ttl"},
	"ENCRYPTION_KEY":   {"redis", "encryption_key"},
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		LogFormat:       "text",
		TransitionDelay: domain.DefaultTransitionDelay,
		SubmitDelay:     domain.DefaultSubmitDelay,
		SessionTTL:      redisAdapter.DefaultTTL,
		Redis: RedisConfig{
			Prefix:  redisAdapter.DefaultPrefix,
			TTL:     redisAdapter.DefaultTTL,
			LockTTL: session.DefaultLockTTL,
		},
	}
}

// Load reads path over the defaults, then applies the environment.
// An empty path reads DefaultFile if it exists; a named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	raw, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := decode(fromEnv(), cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

func fromEnv() map[string]any {
	raw := map[string]any{}
	for name, keys := range env {
		val, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		node := raw
		for _, k := range keys[:len(keys)-1] {
			child, ok := node[k].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[k] = child
			}
			node = child
		}
		node[keys[len(keys)-1]] = val
	}
	return raw
}

// decode merges raw into cfg; keys absent from raw keep their value.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.TransitionDelay < 0 || c.SubmitDelay < 0 {
		return errors.New("delays cannot be negative")
	}
	if c.SessionTTL < 0 {
		return errors.New("session ttl cannot be negative")
	}
	if c.Redis.TTL < 0 || c.Redis.LockTTL < 0 {
		return errors.New("redis ttl cannot be negative")
	}
	if _, err := c.Encryption(); err != nil {
		return err
	}
	return nil
}

// Encryption decodes the snapshot keys. It returns nil when no key is set.
func (c *Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.Redis.EncryptionKey == "" {
		if len(c.Redis.FallbackKeys) > 0 {
			return nil, errors.New("redis.fallback_keys needs redis.encryption_key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(c.Redis.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("redis.encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.Redis.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("redis.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// Logger builds the logger the settings describe, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.NewWriter(w, level, c.LogFormat == "json")
}
