/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type PipelineConfig struct {
	// FPS is the output frame rate for rendering and assembly.
	FPS int `yaml:"fps"`
	// OutputDir is where pipeline artifacts land; empty means a temp dir.
	OutputDir string `yaml:"output_dir"`
}

type SpeechConfig struct {
	Voice string `yaml:"voice"`
	// Rate is the speech rate in words per minute; 0 keeps the engine default.
	Rate int `yaml:"rate"`
	// FallbackURL enables the networked TTS fallback when set.
	FallbackURL string `yaml:"fallback_url"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Pipeline      PipelineConfig `yaml:"pipeline"`
	Speech        SpeechConfig   `yaml:"speech"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Pipeline:      PipelineConfig{FPS: 24, OutputDir: ""},
		Speech:        SpeechConfig{Voice: "", Rate: 0, FallbackURL: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvFPS            = "SCAST_FPS"
	EnvOutputDir      = "SCAST_OUTPUT_DIR"
	EnvVoice          = "SCAST_VOICE"
	EnvRate           = "SCAST_RATE"
	EnvTTSFallbackURL = "SCAST_TTS_FALLBACK_URL"
	EnvTelemetryOptIn = "SCAST_TELEMETRY_OPT_IN"
	EnvLogLevel       = "SCAST_LOG_LEVEL"
	EnvLogFormat      = "SCAST_LOG_FORMAT"
	EnvLogSource      = "SCAST_LOG_SOURCE"
	EnvLogFile        = "SCAST_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ScriptCast")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ScriptCast")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "scriptcast")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The TTS fallback token comes from the OS keyring
// and is returned separately, never kept inside the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Pipeline.FPS > 0 {
		dst.Pipeline.FPS = src.Pipeline.FPS
	}
	if strings.TrimSpace(src.Pipeline.OutputDir) != "" {
		dst.Pipeline.OutputDir = strings.TrimSpace(src.Pipeline.OutputDir)
	}
	if strings.TrimSpace(src.Speech.Voice) != "" {
		dst.Speech.Voice = strings.TrimSpace(src.Speech.Voice)
	}
	if src.Speech.Rate > 0 {
		dst.Speech.Rate = src.Speech.Rate
	}
	if strings.TrimSpace(src.Speech.FallbackURL) != "" {
		dst.Speech.FallbackURL = strings.TrimSpace(src.Speech.FallbackURL)
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFPS)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.FPS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.Pipeline.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVoice)); v != "" {
		cfg.Speech.Voice = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRate)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Speech.Rate = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTTSFallbackURL)); v != "" {
		cfg.Speech.FallbackURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
