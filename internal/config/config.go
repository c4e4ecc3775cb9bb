package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":5000"`

	// Storage
	DBType      string `envconfig:"STORAGE_BACKEND" default:"file"`
	DBDSN       string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/nutrition.db"`
	FileHistory string `envconfig:"HISTORY_FILE" default:"data/history.json"`
	FileGoals   string `envconfig:"GOALS_FILE" default:"data/goals.json"`

	// Extraction service (OpenAI-compatible chat completions)
	ExtractionBaseURL     string        `envconfig:"EXTRACTION_BASE_URL" default:"https://api.openai.com/v1"`
	ExtractionAPIKey      string        `envconfig:"EXTRACTION_API_KEY" default:""`
	ExtractionModel       string        `envconfig:"EXTRACTION_MODEL" default:"gpt-3.5-turbo"`
	ExtractionTemperature float64       `envconfig:"EXTRACTION_TEMPERATURE" default:"0.7"`
	ExtractionTimeout     time.Duration `envconfig:"EXTRACTION_TIMEOUT" default:"30s"`

	// Day bucketing
	DayCutoffHour int    `envconfig:"DAY_CUTOFF_HOUR" default:"4"`
	TimeZone      string `envconfig:"TIMEZONE" default:"Local"`
}

// New reads a fresh Config. A missing .env file is not an error.
func New() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if c.ExtractionAPIKey == "" {
		// conventional name used by OpenAI tooling
		c.ExtractionAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "file":
		if c.FileHistory == "" || c.FileGoals == "" {
			return errors.New("File storage requires HISTORY_FILE and GOALS_FILE to be set")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: file, sqlite, postgres (got %q)", c.DBType)
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.DayCutoffHour < 0 || c.DayCutoffHour > 23 {
		return errors.New("DAY_CUTOFF_HOUR must be between 0 and 23")
	}
	if c.ExtractionTimeout <= 0 {
		return errors.New("EXTRACTION_TIMEOUT must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves TimeZone. "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
