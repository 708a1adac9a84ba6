package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvListURL     = "TRIPX_LIST_URL"
	EnvCDPURL      = "TRIPX_CDP_URL"
	EnvHeadless    = "TRIPX_HEADLESS"
	EnvStoreFile   = "TRIPX_STORE_FILE"
	EnvLogLevel    = "TRIPX_LOG_LEVEL"
	EnvUserDataDir = "TRIPX_USER_DATA_DIR"
)

// LoadEnvFiles loads ENV_FILE if set, otherwise .env.local and .env when present.
// Variables already in the environment are never overwritten.
func LoadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv copies the TRIPX_* variables into cfg
func ApplyEnv(cfg *AppConfig) error {
	if v, ok := os.LookupEnv(EnvListURL); ok && v != "" {
		cfg.Navigation.ListURL = v
	}
	if v, ok := os.LookupEnv(EnvCDPURL); ok {
		cfg.Browser.CDPURL = v
	}
	if v, ok := os.LookupEnv(EnvHeadless); ok && v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeadless, err)
		}
		cfg.Browser.Headless = headless
	}
	if v, ok := os.LookupEnv(EnvStoreFile); ok && v != "" {
		cfg.IO.StoreFile = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvUserDataDir); ok {
		cfg.Browser.UserDataDir = v
	}
	return nil
}
