package planner

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/kafka"
	"github.com/dora-network/num2int/metrics"
	"github.com/dora-network/num2int/redis"
	"github.com/dora-network/num2int/validation"
)

const EnvPrefix = "NUM2INT_"

// Config gathers everything a folding worker is configured with.
type Config struct {
	// FoldEnabled turns constant folding of integer comparisons on. A disabled engine
	// leaves every comparison as written.
	FoldEnabled bool `mapstructure:"fold_enabled" json:"fold_enabled"`
	// CatalogTimeout bounds a single operator catalog read, retries included.
	CatalogTimeout time.Duration  `mapstructure:"catalog_timeout" json:"catalog_timeout"`
	Kafka          kafka.Config   `mapstructure:"kafka" json:"kafka"`
	Redis          redis.Config   `mapstructure:"redis" json:"redis"`
	Metrics        metrics.Config `mapstructure:"metrics" json:"metrics"`
}

func DefaultConfig() Config {
	return Config{
		FoldEnabled:    true,
		CatalogTimeout: 2 * time.Second,
		Kafka:          kafka.DefaultConfig(),
		Redis:          redis.DefaultConfig(),
		Metrics:        metrics.DefaultConfig(),
	}
}

// Validate checks the settings that can be checked without connecting anywhere.
func (c Config) Validate() error {
	if err := validation.ValidatePositiveDuration("catalog_timeout", c.CatalogTimeout); err != nil {
		return err
	}
	if err := validation.ValidateHostPorts("kafka.brokers", c.Kafka.Brokers); err != nil {
		return err
	}
	if err := validation.ValidateTopic("kafka.invalidation_topic", c.Kafka.InvalidationTopic); err != nil {
		return err
	}
	if err := validation.ValidateHostPorts("redis.address", c.Redis.Address); err != nil {
		return err
	}
	if err := validation.ValidateKeyPrefix("redis.key_prefix", c.Redis.KeyPrefix); err != nil {
		return err
	}
	if c.Metrics.Enabled {
		return validation.ValidateListenPort("metrics.port", c.Metrics.Port)
	}
	return nil
}

// envKeys maps environment variables, without EnvPrefix, to config paths.
var envKeys = map[string][]string{
	"FOLD_ENABLED":       {"fold_enabled"},
	"CATALOG_TIMEOUT":    {"catalog_timeout"},
	"KAFKA_BROKERS":      {"kafka", "brokers"},
	"INVALIDATION_TOPIC": {"kafka", "invalidation_topic"},
	"KAFKA_USERNAME":     {"kafka", "authentication", "username"},
	"KAFKA_PASSWORD":     {"kafka", "authentication", "password"},
	"KAFKA_CLIENT_ID":    {"kafka", "client_id"},
	"REDIS_ADDRESS":      {"redis", "address"},
	"REDIS_CLIENT_TYPE":  {"redis", "client_type"},
	"REDIS_MASTER_NAME":  {"redis", "master_name"},
	"REDIS_USERNAME":     {"redis", "username"},
	"REDIS_PASSWORD":     {"redis", "password"},
	"REDIS_KEY_PREFIX":   {"redis", "key_prefix"},
	"METRICS_ENABLED":    {"metrics", "enabled"},
	"METRICS_PORT":       {"metrics", "port"},
	"METRICS_PATH":       {"metrics", "path"},
}

// LoadConfig returns DefaultConfig overlaid with the NUM2INT_* environment variables.
// List values such as NUM2INT_KAFKA_BROKERS are comma separated.
func LoadConfig() (Config, error) {
	return loadEnv(DefaultConfig(), os.LookupEnv)
}

// LoadConfigFile reads a YAML file using the same keys as the mapstructure tags, then
// applies the environment on top.
func LoadConfigFile(path string) (Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.InvalidInputError, err, "read config file")
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return Config{}, errors.Wrap(errors.InvalidInputError, err, "parse config file "+path)
	}

	cfg := DefaultConfig()
	if err := decodeInto(&cfg, raw); err != nil {
		return Config{}, err
	}
	return loadEnv(cfg, os.LookupEnv)
}

// DecodeConfig decodes raw over DefaultConfig. Strings are accepted for every scalar, so
// "true", "8081" and "2s" decode into bool, int and duration fields.
func DecodeConfig(raw map[string]any) (Config, error) {
	cfg := DefaultConfig()
	if err := decodeInto(&cfg, raw); err != nil {
		return Config{}, err
	}
	return validated(cfg)
}

func validated(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	raw := make(map[string]any)
	for name, path := range envKeys {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		setPath(raw, path, strings.TrimSpace(v))
	}
	if len(raw) > 0 {
		if err := decodeInto(&cfg, raw); err != nil {
			return Config{}, err
		}
	}
	return validated(cfg)
}

func setPath(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

func decodeInto(cfg *Config, raw map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			clientTypeHook,
		),
	})
	if err != nil {
		return errors.Wrap(errors.InternalError, err, "build config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(errors.InvalidInputError, err, "decode config")
	}
	return nil
}

func clientTypeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(redis.ClientType(0)) {
		return data, nil
	}
	return redis.ClientTypeFromString(strings.ToLower(data.(string))), nil
}
