package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Game holds the defaults and limits a host applies to sessions.
type Game struct {
	Columns     int           `mapstructure:"columns"`
	Rows        int           `mapstructure:"rows"`
	MineRatio   float64       `mapstructure:"mine_ratio"`
	MaxCells    int           `mapstructure:"max_cells"`
	MaxSessions int           `mapstructure:"max_sessions"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Addr            string        `mapstructure:"addr"`
	BasePath        string        `mapstructure:"base_path"`
	DatabaseURL     string        `mapstructure:"database_url"`
	SavesDir        string        `mapstructure:"saves_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Log             Log           `mapstructure:"log"`
	Game            Game          `mapstructure:"game"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "production")
	v.SetDefault("addr", ":8080")
	v.SetDefault("base_path", "")
	v.SetDefault("database_url", "")
	v.SetDefault("saves_dir", "saves")
	v.SetDefault("shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("game.columns", 9)
	v.SetDefault("game.rows", 9)
	v.SetDefault("game.mine_ratio", 0.0)
	v.SetDefault("game.max_cells", 100*100)
	v.SetDefault("game.max_sessions", 10000)
	v.SetDefault("game.idle_timeout", 30*time.Minute)
}

// Load reads the YAML file at path, if any, and then MINES_* environment
// variables, e.g. MINES_ADDR or MINES_GAME_COLUMNS.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Config) validate() error {
	if c.Game.Columns <= 0 || c.Game.Rows <= 0 {
		return fmt.Errorf("game.columns and game.rows must be positive")
	}
	if c.Game.MineRatio < 0 || c.Game.MineRatio >= 1 {
		return fmt.Errorf("game.mine_ratio must be within [0, 1)")
	}
	if c.Game.MaxCells < 0 || c.Game.MaxSessions < 0 || c.Game.IdleTimeout < 0 {
		return fmt.Errorf("game.max_cells, game.max_sessions and game.idle_timeout must not be negative")
	}
	if c.Game.MaxCells > 0 && c.Game.Columns > c.Game.MaxCells/c.Game.Rows {
		return fmt.Errorf("default board exceeds game.max_cells")
	}
	return nil
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

// LogLevel is log.level if set, else Debug in development and Info otherwise.
func (c Config) LogLevel() logrus.Level {
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		return level
	}
	if c.Development() {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"mode":           c.Mode,
		"addr":           c.Addr,
		"base_path":      c.BasePath,
		"records":        c.DatabaseURL != "",
		"saves_dir":      c.SavesDir,
		"log_level":      c.LogLevel().String(),
		"log_file":       c.Log.File,
		"game_columns":   c.Game.Columns,
		"game_rows":      c.Game.Rows,
		"game_mineratio": c.Game.MineRatio,
		"game_maxcells":  c.Game.MaxCells,
		"game_maxlive":   c.Game.MaxSessions,
		"game_idle":      c.Game.IdleTimeout.String(),
	}
}
