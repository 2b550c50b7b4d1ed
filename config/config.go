package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultHTTPTimeout caps a single Telegram API request. Getting updates
// holds the connection for the full 30-second poll window when the chat is
// idle, and uploading a long video can take minutes, so the cap has to sit
// far above both.
const defaultHTTPTimeout = 300

// Config holds everything the bot reads from its environment. It is built
// once at startup and handed to the components that need it; nothing reads
// ambient environment state after that.
type Config struct {
	TelegramToken string
	OnRender      bool // managed hosting flag, enables the liveness endpoint
	Port          int
	DownloadDir   string
	HTTPTimeout   int // seconds, Telegram client; must outlive the long poll hold and slow uploads
	LogLevel      string
	Proxy         *ProxyConfig
}

// Load merges the optional env file into the process environment and builds
// the configuration from it. A missing env file is fine; variables already
// present in the environment win over file entries.
func Load(filename string) (*Config, error) {
	if filename != "" {
		if err := loadEnvFile(filename); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OnRender:      os.Getenv("RENDER") != "",
		Port:          8080,
		DownloadDir:   "downloads",
		HTTPTimeout:   defaultHTTPTimeout,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Proxy:         LoadProxyConfig(),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = seconds
	}

	return cfg, nil
}

// loadEnvFile reads KEY=VALUE lines into the process environment.
func loadEnvFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return nil
}
