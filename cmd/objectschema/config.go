package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config holds every setting the commands read. Values come from flags,
// OBJECTSCHEMA_* environment variables and an optional config file, in that
// order of precedence.
type config struct {
	Schema      string `mapstructure:"schema"`
	Root        string `mapstructure:"root"`
	Strict      bool   `mapstructure:"strict"`
	Concurrency int    `mapstructure:"concurrency"`
	MaxDepth    int    `mapstructure:"max_depth"`
	Lang        string `mapstructure:"lang"`
	Format      string `mapstructure:"format"`
	Metrics     bool   `mapstructure:"metrics"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"redis"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"schema":         "schema",
	"root":           "root",
	"strict":         "strict",
	"concurrency":    "concurrency",
	"max-depth":      "max_depth",
	"lang":           "lang",
	"format":         "format",
	"metrics":        "metrics",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"redis-addr":     "redis.addr",
	"redis-password": "redis.password",
	"redis-db":       "redis.db",
	"redis-prefix":   "redis.prefix",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("root", "")
	v.SetDefault("strict", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("max_depth", 0)
	v.SetDefault("lang", "")
	v.SetDefault("format", "json")
	v.SetDefault("metrics", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "json")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "")
}

// loadConfig reads file (or .objectschema.yaml from the working directory
// or $HOME when file is empty) and overlays the environment and flags.
func loadConfig(file string, flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OBJECTSCHEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(".objectschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, cfg.check()
}

func (c *config) check() error {
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text, got %q", c.Format)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max-depth must not be negative")
	}
	return nil
}
