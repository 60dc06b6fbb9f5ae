// Package config provides configuration management for the markup engine's
// command-line tools.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"ebook-markup/internal/logger"
	"ebook-markup/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "ebook-markup.yaml"
	// EnvLanguage overrides the configured default language
	EnvLanguage = "EBOOK_MARKUP_LANG"
	// DefaultLanguage is the fallback language tag for localized labels
	DefaultLanguage = "en"
	// DefaultMaxBlankLines is the blank-line run the sanitizer keeps
	DefaultMaxBlankLines = 2
)

// Manager loads and persists engine configuration.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager with the specified config path. If configPath
// is empty, the default path under the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to locate user config directory", err)
		}
		configPath = filepath.Join(configDir, "ebook-markup", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

func defaultConfig() *types.Config {
	return &types.Config{
		DefaultLanguage: DefaultLanguage,
		MaxBlankLines:   DefaultMaxBlankLines,
		LogLevel:        "info",
	}
}

// Load reads configuration from the config file. A missing file is not an
// error; defaults apply. The EBOOK_MARKUP_LANG environment variable takes
// precedence over the file's language.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	switch {
	case os.IsNotExist(err):
		logger.Debug("config file not found, using defaults",
			logger.String("path", m.configPath))
		m.config = defaultConfig()
	case err != nil:
		return types.NewAppError(types.ErrConfig, "failed to read config file", err)
	default:
		cfg := defaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Warn("invalid config file, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			cfg = defaultConfig()
		}
		m.config = cfg
	}

	if lang := os.Getenv(EnvLanguage); lang != "" {
		m.config.DefaultLanguage = lang
	}
	if m.config.MaxBlankLines <= 0 {
		m.config.MaxBlankLines = DefaultMaxBlankLines
	}
	return nil
}

// Save writes the current configuration to the config file, creating the
// directory if needed.
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}
	if dir := filepath.Dir(m.configPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
		}
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}
	return nil
}

// Config returns the loaded configuration.
func (m *Manager) Config() *types.Config {
	return m.config
}
