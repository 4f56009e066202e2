package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.Production())
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 9, c.Game.Columns)
	assert.Equal(t, 9, c.Game.Rows)
	assert.Zero(t, c.Game.MineRatio)
	assert.Equal(t, 10000, c.Game.MaxCells)
	assert.Equal(t, 10000, c.Game.MaxSessions)
	assert.Equal(t, 30*time.Minute, c.Game.IdleTimeout)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, logrus.InfoLevel, c.LogLevel())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: development
addr: ":9000"
saves_dir: /var/lib/mines
log:
  level: warn
game:
  columns: 16
  rows: 16
  mine_ratio: 0.2
`), 0o644))

	t.Setenv("MINES_ADDR", ":9100")
	t.Setenv("MINES_GAME_ROWS", "30")

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Development())
	assert.Equal(t, ":9100", c.Addr)
	assert.Equal(t, "/var/lib/mines", c.SavesDir)
	assert.Equal(t, 16, c.Game.Columns)
	assert.Equal(t, 30, c.Game.Rows)
	assert.InDelta(t, 0.2, c.Game.MineRatio, 1e-9)
	assert.Equal(t, logrus.WarnLevel, c.LogLevel())
}

func TestLoadRejectsBadGame(t *testing.T) {
	t.Setenv("MINES_GAME_MINE_RATIO", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsDefaultBoardOverCap(t *testing.T) {
	t.Setenv("MINES_GAME_MAX_CELLS", "50")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDbURL(t *testing.T) {
	c := Config{DatabaseURL: "postgres://u@h/db"}
	url, err := c.DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@h/db", url)

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "mines")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	url, err = Config{}.DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://mines:p%40ss@db:5432/mines?sslmode=disable", url)
}
