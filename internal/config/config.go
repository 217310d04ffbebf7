// Package config loads readpack settings from defaults, an optional config
// file and READPACK_* environment variables, in increasing precedence.
//
//	log:
//	  level: debug
//	copy:
//	  error_policy: abort
//	  row_compression: lz4
//	metrics:
//	  textfile: /var/lib/node_exporter/readpack.prom
//
// The file path comes from the caller or from READPACK_CONFIG. Nested keys map
// to environment variables with dots replaced by underscores, e.g.
// READPACK_COPY_ERROR_POLICY.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/arloliu/readpack/copier"
	"github.com/arloliu/readpack/format"
)

const (
	envPrefix     = "READPACK"
	envConfigPath = "READPACK_CONFIG"
)

// Config is the complete readpack configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Copy    CopyConfig    `mapstructure:"copy"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// CopyConfig configures the copy command.
type CopyConfig struct {
	// ErrorPolicy is "continue" (log per-batch errors and go on) or "abort".
	ErrorPolicy    string `mapstructure:"error_policy"`
	RowCompression string `mapstructure:"row_compression"`
	Creator        string `mapstructure:"creator"`
}

// MetricsConfig configures metrics export. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

var defaults = map[string]any{
	"log.level":            "info",
	"log.encoding":         "console",
	"log.development":      false,
	"copy.error_policy":    "continue",
	"copy.row_compression": "zstd",
	"copy.creator":         "readpack-copy",
	"metrics.textfile":     "",
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := load(newViper(false), "")
	return cfg
}

// Load reads the configuration. path may be empty, in which case
// READPACK_CONFIG is consulted; with neither set only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(envConfigPath)
	}

	cfg, err := load(newViper(true), path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// Validate rejects unknown values.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch c.Log.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.encoding: unknown encoding %q", c.Log.Encoding))
	}

	if _, err := copier.ParseErrorPolicy(c.Copy.ErrorPolicy); err != nil {
		errs = append(errs, fmt.Errorf("copy.error_policy: %w", err))
	}

	if _, ok := format.ParseCompressionType(c.Copy.RowCompression); !ok {
		errs = append(errs, fmt.Errorf("copy.row_compression: unknown compression %q", c.Copy.RowCompression))
	}

	return errors.Join(errs...)
}

// ErrorPolicy returns the configured error policy. It assumes Validate passed.
func (c *Config) ErrorPolicy() copier.ErrorPolicy {
	policy, err := copier.ParseErrorPolicy(c.Copy.ErrorPolicy)
	if err != nil {
		return copier.PolicyContinue
	}

	return policy
}

// RowCompression returns the configured row compression. It assumes Validate passed.
func (c *Config) RowCompression() format.CompressionType {
	ct, ok := format.ParseCompressionType(c.Copy.RowCompression)
	if !ok {
		return format.CompressionZstd
	}

	return ct
}
