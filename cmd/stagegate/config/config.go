/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config provides the configuration of the CLI: the server to talk
// to and the tokens issued for it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stagegate/stagegate/admin"
)

var (
	// ErrNoToken is returned when no token is stored or given for the server.
	ErrNoToken = errors.New("no token for the server, run 'stagegate token --save' first")
)

// ensureStagegateDir ensures that the directory of Stagegate exists.
func ensureStagegateDir() (string, error) {
	stagegateDir := path.Join(os.Getenv("HOME"), ".stagegate")
	if err := os.MkdirAll(stagegateDir, 0700); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return stagegateDir, nil
}

// configPath returns the path of CLI.
func configPath() (string, error) {
	stagegateDir, err := ensureStagegateDir()
	if err != nil {
		return "", fmt.Errorf("ensure stagegate dir: %w", err)
	}
	return path.Join(stagegateDir, "config.json"), nil
}

// Config is the configuration of CLI.
type Config struct {
	// Auths is the map of the address and the token.
	Auths map[string]string `json:"auths"`
}

// New creates a new configuration.
func New() *Config {
	return &Config{
		Auths: make(map[string]string),
	}
}

// Preload reads STAGEGATE_* environment variables into viper before the
// command runs.
func Preload(_ *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("stagegate")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return nil
}

// LoadToken returns the token for the address: the STAGEGATE_TOKEN
// environment variable if set, the stored one otherwise.
func LoadToken(addr string) (string, error) {
	if token := viper.GetString("token"); token != "" {
		return token, nil
	}

	config, err := Load()
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	token, ok := config.Auths[addr]
	if !ok {
		return "", fmt.Errorf("%s: %w", addr, ErrNoToken)
	}
	return token, nil
}

// Load loads the configuration from the given path.
func Load() (*Config, error) {
	configPathValue, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	file, err := os.Open(filepath.Clean(configPathValue))
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}

		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := New()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	if config.Auths == nil {
		config.Auths = make(map[string]string)
	}

	return config, nil
}

// Save saves the configuration to the given path.
func Save(config *Config) error {
	configPathValue, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(configPathValue), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := json.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	return nil
}

// Dial creates a client of the configured server with its token.
func Dial() (*admin.Client, error) {
	rpcAddr := viper.GetString("rpcAddr")
	token, err := LoadToken(rpcAddr)
	if err != nil {
		return nil, err
	}

	return admin.Dial(rpcAddr, admin.WithToken(token), admin.WithInsecure(viper.GetBool("insecure")))
}
