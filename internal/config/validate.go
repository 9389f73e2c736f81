package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) validate() []string {
	var errs []string

	d := c.Discord
	if d.Enabled && d.Token == "" {
		errs = append(errs, "DISCORD_BOT_TOKEN is required when discord is enabled")
	}
	if d.Intents < 0 {
		errs = append(errs, "DISCORD_INTENTS must be non-negative")
	}
	if d.MaxMessageLength < 0 {
		errs = append(errs, "DISCORD_MAX_MESSAGE_LENGTH must be non-negative")
	}

	e := c.Err
	if strings.TrimSpace(e.Identity) == "" {
		errs = append(errs, "BRIDGE_ERR_IDENTITY must not be empty")
	}
	if strings.TrimSpace(e.Person) == "" {
		errs = append(errs, "BRIDGE_ERR_PERSON must not be empty")
	}
	if strings.TrimSpace(e.Room) == "" {
		errs = append(errs, "BRIDGE_ERR_ROOM must not be empty")
	}

	if c.Bridge.ConfigFile == "" && c.Bridge.DataDir == "" {
		errs = append(errs, "one of DISCORD_BRIDGE_CONFIG_FILE or BOT_DATA_DIR must be set")
	}
	if c.Bridge.PollInterval < 0 {
		errs = append(errs, "DISCORD_BRIDGE_CONFIG_POLL must be non-negative")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not a log level", c.Log.Level))
	}

	return errs
}
