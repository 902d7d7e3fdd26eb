/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

// isolate points the config file at a temp dir and mocks the keyring.
func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvSerperAPIKey, "")
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	path := isolate(t)
	cfg, sec, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":8501" || cfg.LLM.Model != "gemini-1.5-flash" || !cfg.Search.Enabled {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if want := filepath.Join(filepath.Dir(path), "data"); cfg.Storage.DataDir != want {
		t.Fatalf("DataDir = %q, want %q", cfg.Storage.DataDir, want)
	}
	if sec.GeminiAPIKey != "" || sec.SerperAPIKey != "" {
		t.Fatalf("expected no secrets, got %#v", sec)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Server.Addr = "127.0.0.1:9000"
	cfg.Search.Enabled = false
	cfg.Render.FontBold = "/fonts/bold.ttf"
	cfg.General.TelemetryOptIn = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Server.Addr != "127.0.0.1:9000" || got.Search.Enabled || got.Render.FontBold != "/fonts/bold.ttf" || !got.General.TelemetryOptIn {
		t.Fatalf("round trip lost fields: %#v", got)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("llm:\n  model: gemini-2.0-flash\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Fatalf("model not merged: %q", cfg.LLM.Model)
	}
	if !cfg.Search.Enabled || cfg.LLM.TimeoutMs != 60000 {
		t.Fatalf("defaults lost: %#v", cfg)
	}
}

func TestMalformedFileIsError(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvLLMTimeoutMs, "1234")
	t.Setenv(EnvSearchEnabled, "off")
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvStorageDSN, "postgres://u@h/db")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.LLM.TimeoutMs != 1234 || cfg.Search.Enabled || !cfg.General.TelemetryOptIn || cfg.Storage.DSN != "postgres://u@h/db" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if env, ok := EnvOverrideFor("server.addr"); !ok || env != EnvAddr {
		t.Fatalf("EnvOverrideFor(server.addr) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("llm.model"); ok {
		t.Fatalf("llm.model should not be overridden")
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/shk.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/shk.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestKeysCoverOverrides(t *testing.T) {
	keys := Keys()
	if len(keys) != len(overrides) || keys[0] != "server.addr" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
