// Package config holds the resolved runtime configuration the
// execution core needs: workspace root, heartbeat schedule, cron
// timeout, and per-channel direct-send tokens. Config loading for the
// rest of the agent (model selection, provider keys, tool policy) is
// out of scope here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HeartbeatConfig configures the periodic heartbeat service.
type HeartbeatConfig struct {
	IntervalMinutes int    `yaml:"interval_minutes"`
	ReplyTo         string `yaml:"reply_to"`
	Prompt          string `yaml:"prompt"`
}

// CronConfig configures the cron service.
type CronConfig struct {
	ExecTimeoutMinutes int `yaml:"exec_timeout_minutes"`
}

// ChannelTokens holds per-channel bot credentials for direct sending.
type ChannelTokens struct {
	Telegram string `yaml:"telegram"`
	Discord  string `yaml:"discord"`
	Slack    string `yaml:"slack"`
}

// Config is the resolved runtime configuration for the execution core.
type Config struct {
	Workspace string          `yaml:"workspace"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Cron      CronConfig      `yaml:"cron"`
	Channels  ChannelTokens   `yaml:"channels"`
}

// Load reads and parses a YAML config file at path, expanding "~" in
// the workspace path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Workspace = ExpandHome(cfg.Workspace)
	return &cfg, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
