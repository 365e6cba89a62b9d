package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/fetchbot/internal/domain"
)

// LoadConfig loads configuration from file and environment. The bot token
// is only ever read from the environment; it never lives in a config
// file.
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.fetchbot")
		v.AddConfigPath("/etc/fetchbot")
	}

	v.SetEnvPrefix("FETCHBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The required secret comes from the environment.
	config.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")

	config.Download.Dir = expandPath(config.Download.Dir)
	config.Download.HistoryPath = expandPath(config.Download.HistoryPath)
	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

func validateConfig(config *domain.Config) error {
	if config.Server.Enabled && (config.Server.Port < 1 || config.Server.Port > 65535) {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.EngineBinary == "" {
		return fmt.Errorf("extraction engine binary not configured")
	}

	if config.Download.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive")
	}

	if config.Download.ProbeTimeout <= 0 || config.Download.FetchTimeout <= 0 {
		return fmt.Errorf("probe and fetch timeouts must be positive")
	}

	if config.Telegram.PollTimeout < 1 {
		return fmt.Errorf("telegram poll timeout must be at least 1 second")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
