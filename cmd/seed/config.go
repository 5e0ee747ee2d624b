package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/assoc/dialect"
)

// Config holds the settings of a seed run.
type Config struct {
	Dialect       string        `yaml:"dialect"`
	DSN           string        `yaml:"dsn"`
	Recreate      bool          `yaml:"recreate"`
	LogLevel      string        `yaml:"log_level"`
	Stats         bool          `yaml:"stats"`
	Debug         bool          `yaml:"debug"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

const defaultDSN = "file:social.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DefaultConfig seeds a local SQLite file from scratch.
func DefaultConfig() Config {
	return Config{
		Dialect:       dialect.SQLite,
		DSN:           defaultDSN,
		Recreate:      true,
		LogLevel:      "info",
		SlowThreshold: 100 * time.Millisecond,
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// ParseArgs builds the configuration from the command line. Flags that are
// set explicitly override the values of the -config file.
func ParseArgs(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		def  = DefaultConfig()
		over Config
		path string
	)
	fs.StringVar(&path, "config", "", "path to a YAML config file")
	fs.StringVar(&over.Dialect, "dialect", def.Dialect, "storage dialect: sqlite | postgres | mysql | memory")
	fs.StringVar(&over.DSN, "dsn", def.DSN, "data source name")
	fs.BoolVar(&over.Recreate, "recreate", def.Recreate, "drop and recreate the tables")
	fs.StringVar(&over.LogLevel, "log-level", def.LogLevel, "log level: debug | info | warn | error")
	fs.BoolVar(&over.Stats, "stats", def.Stats, "collect query statistics")
	fs.BoolVar(&over.Debug, "debug", def.Debug, "log every statement")
	fs.DurationVar(&over.SlowThreshold, "slow", def.SlowThreshold, "slow query threshold")
	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg := def
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dialect":
			cfg.Dialect = over.Dialect
		case "dsn":
			cfg.DSN = over.DSN
		case "recreate":
			cfg.Recreate = over.Recreate
		case "log-level":
			cfg.LogLevel = over.LogLevel
		case "stats":
			cfg.Stats = over.Stats
		case "debug":
			cfg.Debug = over.Debug
		case "slow":
			cfg.SlowThreshold = over.SlowThreshold
		}
	})
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	switch c.Dialect {
	case dialect.SQLite, dialect.Postgres, dialect.MySQL, dialect.Memory:
	default:
		errs = append(errs, fmt.Errorf("unknown dialect %q", c.Dialect))
	}
	if c.DSN == "" && c.Dialect != dialect.Memory {
		errs = append(errs, errors.New("missing dsn"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.SlowThreshold < 0 {
		errs = append(errs, fmt.Errorf("negative slow threshold %s", c.SlowThreshold))
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}
