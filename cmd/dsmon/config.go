package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/revittco/dsmon/internal/config"
)

// Config holds application configuration: the YAML file overlaid with
// environment variables. Flags are applied on top by the root command.
type Config struct {
	ConfigFile   string     // path to dsmon.yaml
	LogLevel     slog.Level // slog level
	BindPassword string     // plain password from the environment, if any
	File         *config.FileConfig
}

// defaultDataPath returns ~/.dsmon/<filename>, falling back to
// a CWD-relative path if the home directory can't be resolved.
func defaultDataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	return filepath.Join(home, ".dsmon", filename)
}

func loadConfig() (*Config, error) {
	// A .env file is optional; existing variables win.
	_ = godotenv.Load()

	cfg := &Config{
		ConfigFile:   envOr("DSMON_CONFIG", defaultDataPath("dsmon.yaml")),
		LogLevel:     parseLogLevel(envOr("DSMON_LOG_LEVEL", "info")),
		BindPassword: os.Getenv("DSMON_BIND_PASSWORD"),
	}

	fileCfg, err := config.LoadFile(cfg.ConfigFile)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		fileCfg = config.Default()
	default:
		return nil, err
	}
	if err := applyEnv(fileCfg); err != nil {
		return nil, err
	}
	cfg.File = fileCfg
	return cfg, nil
}

func applyEnv(fc *config.FileConfig) error {
	fc.Server.URL = envOr("DSMON_URL", fc.Server.URL)
	fc.Server.BindDN = envOr("DSMON_BIND_DN", fc.Server.BindDN)
	fc.Server.BindPasswordFile = envOr("DSMON_BIND_PASSWORD_FILE", fc.Server.BindPasswordFile)
	fc.AgeIdentity = envOr("DSMON_AGE_KEY", fc.AgeIdentity)

	if v := os.Getenv("DSMON_STARTTLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DSMON_STARTTLS: %w", err)
		}
		fc.Server.StartTLS = b
	}
	if v := os.Getenv("DSMON_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DSMON_CONCURRENCY: %w", err)
		}
		fc.Report.Concurrency = n
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
