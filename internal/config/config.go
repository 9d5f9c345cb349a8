// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for toolify.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.toolify/config.toml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete toolify configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version"`

	// API configuration.
	API APIConfig `toml:"api"`

	// Chat behavior.
	Chat ChatConfig `toml:"chat"`

	// Audio capture and playback.
	Audio AudioConfig `toml:"audio"`

	// Logging.
	Log LogConfig `toml:"log"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the Toolify backend base URL.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// TokenURL is the identity provider's token endpoint for refresh
	// exchanges. Empty disables the file-backed credential provider.
	TokenURL string `toml:"token_url"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// Language is the default manual/TTS language: en, fr, or pdg.
	Language string `toml:"language"`
	// GenerateAudio asks the backend to attach narrated audio to manuals.
	GenerateAudio bool `toml:"generate_audio"`
}

// AudioConfig contains microphone capture and playback settings.
//
// Capture and playback shell out to external helpers; the defaults
// assume ffmpeg and ffplay on PATH.
type AudioConfig struct {
	// CaptureCommand records microphone input to the output path given
	// as the final argument. Stopped with an interrupt signal.
	CaptureCommand []string `toml:"capture_command"`
	// PlayCommand plays the audio file given as the final argument.
	PlayCommand []string `toml:"play_command"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File is the log file path. Empty means the default under the
	// state dir. The TUI never logs to the terminal.
	File string `toml:"file"`
}

// SupportedLanguages are the languages the backend can generate.
var SupportedLanguages = []string{"en", "fr", "pdg"}

// LanguageName returns a display name for a supported language code.
// "pdg" is the backend's code for West African Pidgin, which has no
// standard BCP 47 tag.
func LanguageName(code string) string {
	if code == "pdg" {
		return "Pidgin"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     "https://toolify-api.onrender.com",
			TimeoutSecs: 120,
		},
		Chat: ChatConfig{
			Language:      "en",
			GenerateAudio: false,
		},
		Audio: AudioConfig{
			CaptureCommand: []string{
				"ffmpeg", "-loglevel", "quiet", "-f", defaultCaptureFormat,
				"-i", defaultCaptureDevice, "-acodec", "libmp3lame",
			},
			PlayCommand: []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// StateDir returns the toolify state directory (~/.toolify).
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".toolify"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureStateDir creates the state directory if missing.
func EnsureStateDir() error {
	dir, err := StateDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, fills defaults, applies environment
// overrides, and validates. A missing file is not an error: defaults
// plus environment apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func Save(cfg *Config) error {
	if err := EnsureStateDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// fillDefaults replaces zero values with defaults so a sparse config
// file never leaves required fields empty.
func (c *Config) fillDefaults() {
	def := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.Chat.Language == "" {
		c.Chat.Language = def.Chat.Language
	}
	if len(c.Audio.CaptureCommand) == 0 {
		c.Audio.CaptureCommand = def.Audio.CaptureCommand
	}
	if len(c.Audio.PlayCommand) == 0 {
		c.Audio.PlayCommand = def.Audio.PlayCommand
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Version == "" {
		c.Version = def.Version
	}
}

// ApplyEnvOverrides applies TOOLIFY_* environment variables on top of
// file values. Environment always wins.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TOOLIFY_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TOOLIFY_TOKEN_URL"); v != "" {
		c.API.TokenURL = v
	}
	if v := os.Getenv("TOOLIFY_LANGUAGE"); v != "" {
		c.Chat.Language = v
	}
	if v := os.Getenv("TOOLIFY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks field values without mutating them.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", "must be an absolute URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"api.base_url", "scheme must be http or https"})
	}

	if !isSupportedLanguage(c.Chat.Language) {
		errs = append(errs, ValidationError{
			"chat.language",
			"must be one of " + strings.Join(SupportedLanguages, ", "),
		})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"log.level", "must be debug, info, warn, or error"})
	}

	return errors.Join(errs...)
}

func isSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// Load failures fall back to defaults so startup never blocks on a bad
// config file.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global config so tests start clean.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}
