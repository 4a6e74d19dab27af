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
	"strings"
	"testing"
)

// memoryTokenStore keeps tokens in a map so tests never touch the OS keyring.
type memoryTokenStore struct {
	values map[string]string
}

func (m *memoryTokenStore) Get(service, key string) (string, error) {
	v, ok := m.values[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *memoryTokenStore) Set(service, key, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[service+"/"+key] = value
	return nil
}

func (m *memoryTokenStore) Delete(service, key string) error {
	delete(m.values, service+"/"+key)
	return nil
}

func withMemoryStore(t *testing.T) *memoryTokenStore {
	t.Helper()
	prev := tokenStore
	mem := &memoryTokenStore{}
	tokenStore = mem
	t.Cleanup(func() { tokenStore = prev })
	return mem
}

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("AppData", home)
	} else {
		t.Setenv("HOME", home)
	}
	return home
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvFPS, EnvOutputDir, EnvVoice, EnvRate, EnvTTSFallbackURL,
		EnvTelemetryOptIn, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile,
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.ConfigVersion != 1 {
		t.Fatalf("config version = %d, want 1", cfg.ConfigVersion)
	}
	if cfg.Pipeline.FPS != 24 {
		t.Fatalf("default fps = %d, want 24", cfg.Pipeline.FPS)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("default logging = %+v", cfg.Logging)
	}
	if cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry must default to opt-out")
	}
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	withTempHome(t)
	withMemoryStore(t)
	clearEnvOverrides(t)

	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty", tok)
	}
	if cfg.Pipeline.FPS != 24 {
		t.Fatalf("fps = %d, want default 24", cfg.Pipeline.FPS)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withTempHome(t)
	mem := withMemoryStore(t)
	clearEnvOverrides(t)

	in := Defaults()
	in.Pipeline.FPS = 30
	in.Speech.Voice = "en-us"
	in.Speech.Rate = 170
	in.Speech.FallbackURL = "https://tts.example.com/speak"
	in.Logging.Level = "debug"

	if err := Save(in, "secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(mem.values) != 1 {
		t.Fatalf("token not persisted to keyring store")
	}

	out, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q, want secret-token", tok)
	}
	if out.Pipeline.FPS != 30 || out.Speech.Voice != "en-us" || out.Speech.Rate != 170 {
		t.Fatalf("round trip lost fields: %+v", out)
	}
	if out.Logging.Level != "debug" {
		t.Fatalf("logging level = %q, want debug", out.Logging.Level)
	}
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	home := withTempHome(t)
	withMemoryStore(t)
	clearEnvOverrides(t)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if !filepath.IsAbs(path) || !strings.HasPrefix(path, home) {
		t.Fatalf("config path %q not under temp home %q", path, home)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load with corrupt file: %v", err)
	}
	if cfg.Pipeline.FPS != 24 {
		t.Fatalf("corrupt file must fall back to defaults, got %+v", cfg.Pipeline)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	withTempHome(t)
	withMemoryStore(t)
	clearEnvOverrides(t)

	in := Defaults()
	in.Pipeline.FPS = 30
	in.Speech.Voice = "en-gb"
	if err := Save(in, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv(EnvFPS, "60")
	t.Setenv(EnvVoice, "de")
	t.Setenv(EnvTTSFallbackURL, "https://other.example.com")
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.FPS != 60 {
		t.Fatalf("fps = %d, want env override 60", cfg.Pipeline.FPS)
	}
	if cfg.Speech.Voice != "de" || cfg.Speech.FallbackURL != "https://other.example.com" {
		t.Fatalf("speech = %+v, want env overrides", cfg.Speech)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry opt-in env override not applied")
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("log level = %q, want lowered warn", cfg.Logging.Level)
	}
}

func TestClearTokenRemovesStoredToken(t *testing.T) {
	withTempHome(t)
	mem := withMemoryStore(t)
	clearEnvOverrides(t)

	if err := Save(Defaults(), "secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if len(mem.values) != 0 {
		t.Fatalf("token still present after clear: %v", mem.values)
	}
	if _, tok, err := Load(); err != nil || tok != "" {
		t.Fatalf("Load after clear = token %q, err %v", tok, err)
	}
}

func TestEnvOverrideRejectsBadNumbers(t *testing.T) {
	withTempHome(t)
	withMemoryStore(t)
	clearEnvOverrides(t)

	t.Setenv(EnvFPS, "not-a-number")
	t.Setenv(EnvRate, "-5")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.FPS != 24 {
		t.Fatalf("fps = %d, bad env value must keep default", cfg.Pipeline.FPS)
	}
	if cfg.Speech.Rate != 0 {
		t.Fatalf("rate = %d, negative env value must keep default", cfg.Speech.Rate)
	}
}
