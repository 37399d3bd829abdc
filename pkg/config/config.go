package config

import (
	"fmt"
	"log/slog"
	"strings"

	"kcvdb/pkg/dberrors"
	"kcvdb/pkg/types"
)

// Config is the root of the node configuration, decoded from YAML.
type Config struct {
	Logger LoggerConfig `yaml:"logger"`
	Server ServerConfig `yaml:"http-server"`
	DB     `yaml:"db"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DB struct {
	// DefaultConsistency applies to requests that do not name a level.
	DefaultConsistency string            `yaml:"default_consistency"`
	ColumnStore        ColumnStoreConfig `yaml:"column_store"`
}

type ColumnStoreConfig struct {
	// ShrinkThreshold is the live/capacity ratio under which a mutation
	// reallocates the snapshot array to its exact size.
	ShrinkThreshold float64 `yaml:"shrink_threshold"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultShrinkThreshold bounds wasted capacity left behind by deletions.
const DefaultShrinkThreshold = 0.66

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "DEBUG",
			JSON:  false,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		DB: DB{
			DefaultConsistency: "default",
			ColumnStore: ColumnStoreConfig{
				ShrinkThreshold: DefaultShrinkThreshold,
			},
		},
	}
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Logger.Level))); err != nil {
		return fmt.Errorf("%w: logger.level %q", dberrors.ErrInvalidArgument, c.Logger.Level)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: http-server.port %d out of range", dberrors.ErrInvalidArgument, c.Server.Port)
	}
	if _, err := types.ParseConsistencyLevel(c.DefaultConsistency); err != nil {
		return fmt.Errorf("db.default_consistency: %w", err)
	}
	if t := c.ColumnStore.ShrinkThreshold; !(t > 0 && t <= 1) {
		return fmt.Errorf("%w: db.column_store.shrink_threshold %v not in (0,1]", dberrors.ErrInvalidArgument, t)
	}
	return nil
}
