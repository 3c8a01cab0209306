// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play  PlayConfig  `toml:"play"`
	Store StoreConfig `toml:"store"`
	Log   LogConfig   `toml:"log"`
}

// PlayConfig maps gameplay settings.
type PlayConfig struct {
	Difficulty *string `toml:"difficulty"`
	Seed       *int64  `toml:"seed"`
	MasterRule *string `toml:"master-rule"`
}

// StoreConfig maps progress storage settings.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	Path          *string `toml:"path"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	RedisPrefix   *string `toml:"redis-prefix"`
}

// LogConfig maps diagnostics log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Load reads the TOML config at path and applies environment overrides.
func Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}
