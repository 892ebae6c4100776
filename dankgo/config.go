package dankgo

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/danktimes/dankgo/dankgo/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	Metrics MetricsConfig     `toml:"metrics"`
	Backup  BackupConfig      `toml:"backup"`
	Game    GameConfig        `toml:"game"`
	Legacy  LegacyConfig      `toml:"legacy"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type BackupConfig struct {
	Enabled       bool   `toml:"enabled"`
	Key           string `toml:"key"`
	Secret        string `toml:"secret"`
	Region        string `toml:"region"`
	Bucket        string `toml:"bucket"`
	IntervalHours int    `toml:"interval_hours"`
}

type GameConfig struct {
	AutosaveMinutes int `toml:"autosave_minutes"`
}

// LegacyConfig points at the original bot's MongoDB store for one-shot
// imports via -import-legacy.
type LegacyConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	DumpPath string `toml:"dump_path"`
}
