package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "policytraits.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/policytraits"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/policytraits/config.yaml)
// 3. Project config (policytraits.yaml in current or parent directories)
// 4. Each explicit path, in order
func (l *Loader) Load(paths ...string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := loadLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := loadLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Explicit documents must load
	for _, path := range paths {
		doc, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded policy document", slog.String("path", path), slog.Int("policies", len(doc.Policies)))
		config.Merge(doc)
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadGlob loads every document matching pattern on top of the layered
// config. Patterns support ** for recursive matching. Two documents that
// define the same policy name are an error.
func (l *Loader) LoadGlob(pattern string) (*Config, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no policy documents match %q", pattern)
	}
	sort.Strings(paths)

	owners := make(map[string]string)
	for _, path := range paths {
		doc, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		for _, p := range doc.Policies {
			if prev, ok := owners[p.Name]; ok {
				return nil, fmt.Errorf("policy %q defined in both %s and %s", p.Name, prev, path)
			}
			owners[p.Name] = path
		}
	}

	return l.Load(paths...)
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for policytraits.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
