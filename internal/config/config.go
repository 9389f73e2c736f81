package config

import (
	"path/filepath"
	"strings"
	"time"
)

// BridgeConfigName is the file looked for next to the bot data directory.
const BridgeConfigName = "discord_bridge_config.yaml"

// Config is the process configuration of the bridge. The bridge rules live in
// a separate document, see BridgeConfigPath.
type Config struct {
	Discord DiscordConfig
	Err     ErrConfig
	Bridge  BridgeConfig
	Log     LogConfig
}

// DiscordConfig holds Discord gateway settings.
type DiscordConfig struct {
	Enabled          bool   `env:"DISCORD_ENABLED"`
	Token            string `env:"DISCORD_BOT_TOKEN"`
	Intents          int    `env:"DISCORD_INTENTS"`
	MaxMessageLength int    `env:"DISCORD_MAX_MESSAGE_LENGTH"`
}

// ErrConfig holds settings for the chat framework side.
type ErrConfig struct {
	// Identity is the bridge's own person identifier on the err side.
	Identity string `env:"BRIDGE_ERR_IDENTITY"`
	// Person and Room are where the console starts out.
	Person string `env:"BRIDGE_ERR_PERSON"`
	Room   string `env:"BRIDGE_ERR_ROOM"`
}

// BridgeConfig locates the bridge rules document.
type BridgeConfig struct {
	ConfigFile string `env:"DISCORD_BRIDGE_CONFIG_FILE"`
	DataDir    string `env:"BOT_DATA_DIR"`
	// PollInterval reloads the rules when the file changes. Zero disables it.
	PollInterval time.Duration `env:"DISCORD_BRIDGE_CONFIG_POLL"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL"`
	File  string `env:"LOG_FILE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			Enabled:          true,
			Intents:          DefaultIntents,
			MaxMessageLength: 2000,
		},
		Err: ErrConfig{
			Identity: "@discordbridge",
			Person:   "@operator",
			Room:     "#general",
		},
		Bridge: BridgeConfig{
			DataDir: "~/.discordbridge/data",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultIntents covers guild messages, direct messages and message content.
const DefaultIntents = 1<<9 | 1<<12 | 1<<15

// BridgeConfigPath returns the bridge rules file: the configured file, or
// discord_bridge_config.yaml in the parent of the data directory.
func (c *Config) BridgeConfigPath() string {
	if c.Bridge.ConfigFile != "" {
		return expandHome(c.Bridge.ConfigFile)
	}
	return filepath.Join(expandHome(c.Bridge.DataDir), "..", BridgeConfigName)
}

// LogPath returns the expanded log file path, or "" to log to stderr.
func (c *Config) LogPath() string {
	return expandHome(c.Log.File)
}

// DataPath returns the expanded bot data directory.
func (c *Config) DataPath() string {
	return expandHome(c.Bridge.DataDir)
}

// ConsoleLogPath is where logs go while the console owns the terminal.
func (c *Config) ConsoleLogPath() string {
	if p := c.LogPath(); p != "" {
		return p
	}
	return filepath.Join(c.DataPath(), "discordbridge.log")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
