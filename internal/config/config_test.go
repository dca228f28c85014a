package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 2*time.Minute, c.Game.MoveTimeout)
	assert.Equal(t, 10*time.Minute, c.Game.FinishedRetention)
	assert.Equal(t, 6, c.Game.Blackjack.MaxPlayers)
	assert.Equal(t, 100, c.Game.DeathRoll.DefaultCeiling)
	assert.Equal(t, 2*time.Second, c.Game.Duel.MinDelay)
	assert.Equal(t, 5*time.Second, c.Game.Duel.MaxDelay)
	assert.Equal(t, 50, c.Artifact.MoodThreshold)
	assert.Equal(t, 10*time.Minute, c.Artifact.DisturbCooldown)
	assert.Equal(t, "The Cracked Compass", c.Artifact.Name)
	assert.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
game:
  move_timeout: 30s
  blackjack:
    max_players: 4
artifact:
  store: memory
  mood_threshold: 70
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, c.Game.MoveTimeout)
	assert.Equal(t, 4, c.Game.Blackjack.MaxPlayers)
	assert.Equal(t, "memory", c.Artifact.Store)
	assert.Equal(t, 70, c.Artifact.MoodThreshold)
	// 未覆盖的值保持默认
	assert.Equal(t, 15, c.Game.Blackjack.ReshuffleBelow)
	assert.Equal(t, "sqlite", c.Database.Driver)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BUGG_GAME_MAX_SESSIONS", "5")
	path := writeConfig(t, "server:\n  port: 9000\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Game.MaxSessions)
	assert.Equal(t, 9000, c.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown store":   "artifact:\n  store: redis\n",
		"night window":    "artifact:\n  night_start_hour: 30\n",
		"ceiling range":   "game:\n  deathroll:\n    min_ceiling: 1\n",
		"duel delays":     "game:\n  duel:\n    min_delay: 5s\n    max_delay: 1s\n",
		"blackjack decks": "game:\n  blackjack:\n    decks: 0\n",
		"server mode":     "server:\n  mode: turbo\n",
		"max players":     "game:\n  blackjack:\n    max_players: 0\n",
		"touch max":       "artifact:\n  touch_max: -2\n",
		"disturb swing":   "artifact:\n  disturb_swing: -20\n",
		"move timeout":    "game:\n  move_timeout: -1s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	c := Default()
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Artifact.Timezone = "UTC"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	c.Artifact.Timezone = "Not/AZone"
	_, err = c.Location()
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	path := writeConfig(t, "artifact:\n  store: memory\n")

	s, err := Settings(path)
	require.NoError(t, err)

	art, ok := s["artifact"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "memory", art["store"])
	assert.Equal(t, "The Cracked Compass", art["name"])
	assert.Contains(t, s, "game")
}
