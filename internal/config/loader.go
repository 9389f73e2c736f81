package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads configuration from the environment. Variables from dotenv, if
// the file exists, fill in anything the environment does not set.
func Load(dotenv string) (*Config, error) {
	vars := environ()
	if dotenv != "" {
		fileVars, err := godotenv.Read(dotenv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("read %s: %w", dotenv, err)
		}
		for k, v := range fileVars {
			if _, set := vars[k]; !set {
				vars[k] = v
			}
		}
	}
	return LoadFrom(vars)
}

// LoadFrom applies a set of variables on top of DefaultConfig.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return cfg, fmt.Errorf("apply environment: %w", err)
	}
	return cfg, nil
}

func environ() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp"
	}
	return home
}
