// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lemurdu20/LeMuRobot/utils"
)

// Config holds all configuration for the bot process
type Config struct {
	Discord   DiscordConfig   `json:"discord"`
	Storage   StorageConfig   `json:"storage"`
	Server    ServerConfig    `json:"server"`
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

type DiscordConfig struct {
	Token string `json:"-"`
	AppID string `json:"app_id"`
	// GuildID scopes command registration to one guild for fast iteration.
	// Empty means global registration.
	GuildID string `json:"guild_id"`
	// RegisterCommands re-deploys the slash commands on startup. Disable it
	// once commands are stable to skip the extra API round trip.
	RegisterCommands bool `json:"register_commands"`
}

type StorageConfig struct {
	DataDir string `json:"data_dir"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Enabled         bool          `json:"enabled"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type LoggingConfig struct {
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type SchedulerConfig struct {
	CheckInterval time.Duration `json:"check_interval"`
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Discord: DiscordConfig{
			Token:            getEnvString("DISCORD_TOKEN", ""),
			AppID:            getEnvString("DISCORD_APP_ID", ""),
			GuildID:          getEnvString("DISCORD_GUILD_ID", ""),
			RegisterCommands: getEnvBool("DISCORD_REGISTER_COMMANDS", true),
		},
		Storage: StorageConfig{
			DataDir: resolveDataDir(getEnvString("DATA_DIR", "data")),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			Enabled:         getEnvBool("SERVER_ENABLED", true),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			FilePath:   getEnvString("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Scheduler: SchedulerConfig{
			CheckInterval: getEnvDuration("SCHEDULER_CHECK_INTERVAL", utils.SchedulerCheckInterval),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDataDir keeps the data directory inside the working directory or
// the /app container root. Anything else falls back to ./data so a bad env
// var cannot make the bot write outside its own tree.
func resolveDataDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "data"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "data"
	}
	for _, root := range []string{cwd, "/app"} {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return abs
		}
	}
	return filepath.Join(cwd, "data")
}

// Validate checks the configuration for values the bot cannot run without
func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Discord.Token == "" {
		errs = append(errs, "DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		errs = append(errs, "DISCORD_APP_ID is required")
	}
	if cfg.Server.Enabled && (cfg.Server.Port < 1 || cfg.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("SERVER_PORT %d is out of range", cfg.Server.Port))
	}
	if cfg.Scheduler.CheckInterval < time.Second {
		errs = append(errs, "SCHEDULER_CHECK_INTERVAL must be at least 1s")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ServerAddress returns the host:port the health server binds to
func (cfg *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}

func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Environment variables already set win over the file
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	return scanner.Err()
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
