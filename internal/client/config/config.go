package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/subosito/gotenv"
)

const (
	DefaultAPIURL = "http://localhost:5000"
	DefaultDBPath = "syllabify.db"

	EnvAPIURL = "SYLLABIFY_API_URL"
	EnvDBPath = "SYLLABIFY_DB_PATH"

	envFile = ".env"
)

// Config holds runtime settings for the Syllabify CLI.
//
// A zero RequestTimeout leaves requests bounded only by their context.
type Config struct {
	APIURL         string
	DBPath         string
	RequestTimeout time.Duration
	Verbose        bool
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = DefaultAPIURL
	c.DBPath = DefaultDBPath
	c.RequestTimeout = 0
	c.Verbose = false
}

// LoadConfig builds a Config from defaults, environment, JSON and flags.
// args are the command-line arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	parseEnv(cfg)

	if err := parseJSON(cfg, configPath(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile exports variables from path that are not already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
}
