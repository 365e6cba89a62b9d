package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Download DownloadConfig `mapstructure:"download"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains the operational HTTP API configuration
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// TelegramConfig contains chat transport configuration. Token is the one
// required secret and is sourced from the TELEGRAM_BOT_TOKEN environment
// variable.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // long-poll timeout, seconds
}

// DownloadConfig contains pipeline configuration
type DownloadConfig struct {
	Dir          string        `mapstructure:"dir"`
	EngineBinary string        `mapstructure:"engine_binary"`
	MaxFileSize  int64         `mapstructure:"max_file_size"` // bytes, checked before delivery
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	HistoryPath  string        `mapstructure:"history_path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    8080,
		},
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Download: DownloadConfig{
			Dir:          "downloads",
			EngineBinary: "yt-dlp",
			MaxFileSize:  50 * 1024 * 1024,
			ProbeTimeout: 2 * time.Minute,
			FetchTimeout: 10 * time.Minute,
			HistoryPath:  "downloads/history.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
