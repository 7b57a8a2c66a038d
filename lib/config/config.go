/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package config reads the framework settings from a properties file
//
// Values are resolved from (highest wins): Set overrides, VULCAN_<KEY> env
// variables with dots replaced by underscores, the properties file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/cpmntech/vulcan/lib/log"
)

// DefaultPath is used when VULCAN_CONFIG env is not set
const DefaultPath = "config.properties"

// EnvPrefix of the variables overriding the file values
const EnvPrefix = "VULCAN"

// ErrNotFound is returned when required key is not configured
var ErrNotFound = errors.New("config key not found")

// Config is a flat key/value configuration
type Config struct {
	v    *viper.Viper
	path string
}

var (
	instanceMu   sync.Mutex
	instance     *Config
	instanceOnce sync.Once
)

// New creates configuration without file, only env and overrides are served
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Load reads the properties file, the file must exist
func Load(path string) (*Config, error) {
	cfg := New()
	cfg.path = path
	cfg.v.SetConfigFile(path)
	cfg.v.SetConfigType("properties")
	if err := cfg.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to load configuration file %q: %w", path, err)
	}
	log.WithFunc("config", "Load").Debug("Configuration loaded", "path", path)
	return cfg, nil
}

// Instance returns process-wide configuration, loaded once from VULCAN_CONFIG or DefaultPath
func Instance() *Config {
	instanceOnce.Do(func() {
		instanceMu.Lock()
		defer instanceMu.Unlock()
		if instance != nil {
			return
		}

		logger := log.WithFunc("config", "Instance")
		path := os.Getenv(EnvPrefix + "_CONFIG")
		if path == "" {
			path = DefaultPath
		}
		cfg, err := Load(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Configuration file is absent, using env only", "path", path)
			} else {
				logger.Error("Unable to load configuration, using env only", "path", path, "err", err)
			}
			cfg = New()
		}
		instance = cfg
	})

	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// SetInstance replaces the process-wide configuration
func SetInstance(cfg *Config) {
	instanceOnce.Do(func() {})
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = cfg
}

// Path returns the file the configuration was loaded from, empty when none
func (c *Config) Path() string {
	return c.path
}

// Set overrides the key value
func (c *Config) Set(key, value string) {
	c.v.Set(key, value)
}

// IsSet tells if the key is configured by any of the sources
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Get returns the trimmed value of the required key
func (c *Config) Get(key string) (string, error) {
	logger := log.WithFunc("config", "Get")
	if !c.v.IsSet(key) {
		logger.Error("Missing configuration key", "key", key)
		return "", fmt.Errorf("%w: '%s'", ErrNotFound, key)
	}
	value := strings.TrimSpace(c.v.GetString(key))
	logger.Debug("Configuration value read", "key", key)
	return value, nil
}

// GetInt returns the required key parsed as integer
func (c *Config) GetInt(key string) (int, error) {
	value, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config key '%s' is not an integer: %w", key, err)
	}
	return i, nil
}

// GetBool returns the required key parsed as boolean
func (c *Config) GetBool(key string) (bool, error) {
	value, err := c.Get(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config key '%s' is not a boolean: %w", key, err)
	}
	return b, nil
}

// GetDefault returns the value of optional key or def when it's not set
func (c *Config) GetDefault(key, def string) string {
	if !c.v.IsSet(key) {
		return def
	}
	return strings.TrimSpace(c.v.GetString(key))
}

// GetIntDefault returns the optional key as integer, def is used when the key is not set
func (c *Config) GetIntDefault(key string, def int) (int, error) {
	if !c.v.IsSet(key) {
		return def, nil
	}
	return c.GetInt(key)
}

// GetBoolDefault returns the optional key as boolean, def is used when the key is not set
func (c *Config) GetBoolDefault(key string, def bool) (bool, error) {
	if !c.v.IsSet(key) {
		return def, nil
	}
	return c.GetBool(key)
}

// ApplyOverrides sets "key=value" pairs, like the -D options of the CLI
func (c *Config) ApplyOverrides(pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q, expected key=value", pair)
		}
		c.Set(key, value)
	}
	return nil
}
