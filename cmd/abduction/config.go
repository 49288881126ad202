// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/logging"
	"github.com/giraugh/abduction-sub000/internal/match"
	"github.com/giraugh/abduction-sub000/internal/xdg"
)

// Config is the server configuration. Values come from flag defaults, then
// the YAML config file, then flags set on the command line.
type Config struct {
	TickInterval      time.Duration `koanf:"tick_interval" json:"tick_interval,omitempty" jsonschema:"description=Time between ticks"`
	WorldRadius       int           `koanf:"world_radius" json:"world_radius,omitempty" jsonschema:"minimum=1,description=Radius of the world in hexes"`
	PlayerCount       int           `koanf:"player_count" json:"player_count,omitempty" jsonschema:"minimum=1,description=Players per match"`
	MatchCooldown     time.Duration `koanf:"match_cooldown" json:"match_cooldown,omitempty" jsonschema:"description=Pause between matches"`
	WorldAdvanceEvery int           `koanf:"world_advance_every" json:"world_advance_every,omitempty" jsonschema:"minimum=1,description=Ticks between time of day changes"`
	Seed              uint64        `koanf:"seed" json:"seed,omitempty" jsonschema:"description=Random seed; 0 derives it from the match id"`
	LogFormat         string        `koanf:"log_format" json:"log_format,omitempty" jsonschema:"enum=json,enum=text"`
	LogLevel          string        `koanf:"log_level" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	MetricsAddr       string        `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=Metrics and health listen address; empty disables"`
	FeedAddr          string        `koanf:"feed_addr" json:"feed_addr,omitempty" jsonschema:"description=Viewer feed listen address"`
	MatchID           string        `koanf:"match_id" json:"match_id,omitempty" jsonschema:"description=Resume this match instead of the latest"`
	AdminStdin        bool          `koanf:"admin_stdin" json:"admin_stdin,omitempty" jsonschema:"description=Read admin commands from stdin"`
	AutoMigrate       bool          `koanf:"auto_migrate" json:"auto_migrate,omitempty" jsonschema:"description=Apply pending migrations on start"`
}

// Defaults for serve flags.
const (
	defaultTickInterval      = 500 * time.Millisecond
	defaultWorldRadius       = 10
	defaultPlayerCount       = 15
	defaultMatchCooldown     = 20 * time.Minute
	defaultWorldAdvanceEvery = match.DefaultWorldAdvanceEvery
	defaultLogFormat         = logging.FormatJSON
	defaultLogLevel          = "info"
	defaultMetricsAddr       = "127.0.0.1:9100"
	defaultFeedAddr          = ":8080"
)

// addConfigFlags registers a flag per config key.
func addConfigFlags(flagSet *pflag.FlagSet) {
	flagSet.Duration("tick-interval", defaultTickInterval, "time between ticks")
	flagSet.Int("world-radius", defaultWorldRadius, "world radius in hexes")
	flagSet.Int("player-count", defaultPlayerCount, "players per match")
	flagSet.Duration("match-cooldown", defaultMatchCooldown, "pause between matches")
	flagSet.Int("world-advance-every", defaultWorldAdvanceEvery, "ticks between time of day changes")
	flagSet.Uint64("seed", 0, "random seed (0 = derive from match id)")
	flagSet.String("log-format", defaultLogFormat, "log format (json or text)")
	flagSet.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flagSet.String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flagSet.String("feed-addr", defaultFeedAddr, "viewer feed HTTP address")
	flagSet.String("match-id", "", "resume this match instead of the latest")
	flagSet.Bool("admin-stdin", true, "read admin commands from stdin")
	flagSet.Bool("auto-migrate", false, "apply pending migrations before starting")
}

// loadConfig layers the config file and flags. A missing file is only an
// error when it was named explicitly.
func loadConfig(path string, flagSet *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "loading config file")
		}
	}

	flags := posflag.ProviderWithFlag(flagSet, ".", k, func(f *pflag.Flag) (string, any) {
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flagSet, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "loading flags")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decoding config")
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	errb := oops.Code("CONFIG_INVALID")
	switch {
	case c.TickInterval <= 0:
		return errb.With("tick_interval", c.TickInterval).Errorf("tick_interval must be positive")
	case c.WorldRadius <= 0:
		return errb.With("world_radius", c.WorldRadius).Errorf("world_radius must be positive")
	case c.PlayerCount <= 0:
		return errb.With("player_count", c.PlayerCount).Errorf("player_count must be positive")
	case c.MatchCooldown < 0:
		return errb.With("match_cooldown", c.MatchCooldown).Errorf("match_cooldown must not be negative")
	case c.WorldAdvanceEvery <= 0:
		return errb.With("world_advance_every", c.WorldAdvanceEvery).Errorf("world_advance_every must be positive")
	case c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatText:
		return errb.With("log_format", c.LogFormat).Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	case c.FeedAddr == "":
		return errb.Errorf("feed_addr is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MatchID != "" {
		if _, err := core.ParseMatchID(c.MatchID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) runnerConfig() match.RunnerConfig {
	return match.RunnerConfig{
		TickInterval:      c.TickInterval,
		Cooldown:          c.MatchCooldown,
		PlayerCount:       c.PlayerCount,
		WorldRadius:       c.WorldRadius,
		WorldAdvanceEvery: c.WorldAdvanceEvery,
		Seed:              c.Seed,
		ResumeMatchID:     c.MatchID,
	}
}

// databaseURL reads DATABASE_URL from the environment.
func databaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	return url, nil
}
