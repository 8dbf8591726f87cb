// Package config holds user configuration for Focus Buddy.
// Config is loaded once at startup and passed explicitly into each
// component that needs it; nothing reads it from ambient global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds user preferences and credentials.
type Config struct {
	Provider     string `json:"provider"` // "openai" or "gemini"; empty = auto-detect
	OpenAIAPIKey string `json:"openai_api_key"`
	GeminiAPIKey string `json:"gemini_api_key"`
	Model        string `json:"model"` // optional model override

	// DataDir is where the session database and the calendar/task
	// files live. Defaults to the config directory.
	DataDir string `json:"data_dir"`

	// AutoSchedule books the first free slot when planning.
	AutoSchedule bool `json:"auto_schedule"`

	// HorizonHours bounds the free-slot scan window.
	HorizonHours int `json:"horizon_hours"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HorizonHours: 8,
	}
}

// Dir returns the directory where config and data are stored.
// Prefers a project-local .focusbuddy directory, falling back to
// the home-level one.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".focusbuddy")
		if stat, err := os.Stat(localDir); err == nil && stat.IsDir() {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".focusbuddy"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment
// fallbacks. A missing file is not an error; the result is still
// usable if an API key is present in the environment.
func Load() (Config, error) {
	path, err := File()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return DefaultConfig(), err
	}

	// Env vars fill gaps but never override the file.
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}
	if cfg.HorizonHours <= 0 {
		cfg.HorizonHours = 8
	}

	return cfg, nil
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := File()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SessionDBPath returns the path of the session history database.
func (c Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "focus_memory.db")
}

// CalendarPath returns the path of the calendar data file.
func (c Config) CalendarPath() string {
	return filepath.Join(c.DataDir, "calendar_data.json")
}

// TasksPath returns the path of the task data file.
func (c Config) TasksPath() string {
	return filepath.Join(c.DataDir, "tasks_data.json")
}
