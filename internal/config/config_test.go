package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestNew_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_BACKEND", "APP_ENV", "HISTORY_FILE", "DAY_CUTOFF_HOUR", "EXTRACTION_TIMEOUT", "EXTRACTION_MODEL", "EXTRACTION_API_KEY", "TIMEZONE"} {
		unsetEnv(t, k)
	}
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "file", c.DBType)
	assert.Equal(t, "data/history.json", c.FileHistory)
	assert.Equal(t, 4, c.DayCutoffHour)
	assert.Equal(t, 30*time.Second, c.ExtractionTimeout)
	assert.Equal(t, "gpt-3.5-turbo", c.ExtractionModel)
	assert.Equal(t, "sk-legacy", c.ExtractionAPIKey)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/n.db")
	t.Setenv("EXTRACTION_TIMEOUT", "5s")
	t.Setenv("DAY_CUTOFF_HOUR", "3")
	t.Setenv("TIMEZONE", "UTC")

	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBType)
	assert.Equal(t, 5*time.Second, c.ExtractionTimeout)
	assert.Equal(t, 3, c.DayCutoffHour)
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:               "development",
			DBType:            "file",
			FileHistory:       "h.json",
			FileGoals:         "g.json",
			ExtractionTimeout: time.Second,
			DayCutoffHour:     4,
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.DBType = "postgres"
	assert.Error(t, c.Validate())

	c = base()
	c.DBType = "mongo"
	assert.Error(t, c.Validate())

	c = base()
	c.Env = "qa"
	assert.Error(t, c.Validate())

	c = base()
	c.DayCutoffHour = 24
	assert.Error(t, c.Validate())

	c = base()
	c.TimeZone = "Not/AZone"
	assert.Error(t, c.Validate())
}
