package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig holds raw overrides read from the environment. Unset variables
// leave their pointer nil so file values survive.
type envConfig struct {
	Difficulty    *string `env:"EDGEPLAY_DIFFICULTY"`
	Seed          *int64  `env:"EDGEPLAY_SEED"`
	MasterRule    *string `env:"EDGEPLAY_MASTER_RULE"`
	Backend       *string `env:"EDGEPLAY_STORE_BACKEND"`
	DBPath        *string `env:"EDGEPLAY_DB"`
	RedisAddr     *string `env:"EDGEPLAY_REDIS_ADDR"`
	RedisPassword *string `env:"EDGEPLAY_REDIS_PASSWORD"`
	RedisDB       *int    `env:"EDGEPLAY_REDIS_DB"`
	RedisPrefix   *string `env:"EDGEPLAY_REDIS_PREFIX"`
	LogLevel      *string `env:"EDGEPLAY_LOG_LEVEL"`
	LogPath       *string `env:"EDGEPLAY_LOG_PATH"`
}

// ApplyEnv overlays EDGEPLAY_* environment variables on cfg.
func ApplyEnv(cfg *FileConfig) error {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	override(&cfg.Play.Difficulty, raw.Difficulty)
	override(&cfg.Play.Seed, raw.Seed)
	override(&cfg.Play.MasterRule, raw.MasterRule)
	override(&cfg.Store.Backend, raw.Backend)
	override(&cfg.Store.Path, raw.DBPath)
	override(&cfg.Store.RedisAddr, raw.RedisAddr)
	override(&cfg.Store.RedisPassword, raw.RedisPassword)
	override(&cfg.Store.RedisDB, raw.RedisDB)
	override(&cfg.Store.RedisPrefix, raw.RedisPrefix)
	override(&cfg.Log.Level, raw.LogLevel)
	override(&cfg.Log.Path, raw.LogPath)
	return nil
}

func override[T any](target **T, value *T) {
	if value != nil {
		*target = value
	}
}
