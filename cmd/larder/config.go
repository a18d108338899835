// Config loading for the larder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyAPIVersion = "api_version"
	cfgKeyFields     = "fields"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# larder configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Major API version of the system under test (0 = unknown)
api_version: 0

# Configured fields per entity kind. Only these are parsed into
# structured values.
# fields:
#   node: [field_tags, field_image]
#   user: [roles]
`

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyAPIVersion, 0)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// backendConfig builds the backend Config from the loaded file and the
// resolved data directory.
func backendConfig(v *viper.Viper, dataDir string) types.Config {
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}
	if v == nil {
		return cfg
	}
	cfg.Backend = v.GetString(cfgKeyBackend)
	cfg.APIVersion = v.GetInt(cfgKeyAPIVersion)
	if fields := v.GetStringMapStringSlice(cfgKeyFields); len(fields) > 0 {
		cfg.Fields = fields
	}
	return cfg
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
