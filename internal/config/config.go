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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides at runtime. API keys are never
// part of this struct; they live in the OS keyring (see Secrets).
//
// config_version: bump when the structure changes in a backward-incompatible way.

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type SearchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type StorageConfig struct {
	// DSN selects PostgreSQL when it starts with postgres://; empty means SQLite in DataDir.
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
}

// RenderConfig points at TrueType files; empty paths use the embedded Go fonts.
type RenderConfig struct {
	FontRegular string `yaml:"font_regular"`
	FontBold    string `yaml:"font_bold"`
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
	ConfigVersion int           `yaml:"config_version"`
	Server        ServerConfig  `yaml:"server"`
	LLM           LLMConfig     `yaml:"llm"`
	Search        SearchConfig  `yaml:"search"`
	Storage       StorageConfig `yaml:"storage"`
	Render        RenderConfig  `yaml:"render"`
	General       GeneralConfig `yaml:"general"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Secrets holds the API keys resolved from the environment or the OS keyring.
type Secrets struct {
	GeminiAPIKey string
	SerperAPIKey string
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Server:        ServerConfig{Addr: ":8501", ReadTimeoutMs: 15000, WriteTimeoutMs: 120000, ShutdownTimeoutMs: 10000},
		LLM:           LLMConfig{BaseURL: "https://generativelanguage.googleapis.com/v1beta", Model: "gemini-1.5-flash", TimeoutMs: 60000},
		Search:        SearchConfig{Enabled: true, BaseURL: "https://google.serper.dev", TimeoutMs: 10000},
		General:       GeneralConfig{TelemetryOptIn: false},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfig         = "SHK_CONFIG"
	EnvAddr           = "SHK_ADDR"
	EnvLLMBaseURL     = "SHK_LLM_BASE_URL"
	EnvLLMModel       = "SHK_LLM_MODEL"
	EnvLLMTimeoutMs   = "SHK_LLM_TIMEOUT_MS"
	EnvSearchEnabled  = "SHK_SEARCH_ENABLED"
	EnvSearchBaseURL  = "SHK_SEARCH_BASE_URL"
	EnvStorageDSN     = "SHK_STORAGE_DSN"
	EnvDataDir        = "SHK_DATA_DIR"
	EnvFontRegular    = "SHK_FONT_REGULAR"
	EnvFontBold       = "SHK_FONT_BOLD"
	EnvTelemetryOptIn = "SHK_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SHK_LOG_LEVEL"
	EnvLogFormat = "SHK_LOG_FORMAT"
	EnvLogSource = "SHK_LOG_SOURCE"
	EnvLogFile   = "SHK_LOG_FILE"
	// Secrets
	EnvGeminiAPIKey = "SHK_GEMINI_API_KEY"
	EnvSerperAPIKey = "SHK_SERPER_API_KEY"
)

// ConfigPath returns the per-user config file path, or $SHK_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Shakespeare")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Shakespeare")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "shakespeare")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "shakespeare")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads a .env file from the working directory (if any), the user config
// file (if present), applies defaults and environment overrides, and resolves
// the API keys. A malformed config file is an error.
func Load() (AppConfig, Secrets, error) {
	_ = godotenv.Load()
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, Secrets{}, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, Secrets{}, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	}
	applyEnvOverrides(&cfg)
	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		cfg.Storage.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	return cfg, loadSecrets(), nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
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
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies non-zero file values over the defaults. Booleans are only
// taken from the file when the key is present in raw.
func mergeInto(dst, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setStr(&dst.Server.Addr, src.Server.Addr)
	setInt(&dst.Server.ReadTimeoutMs, src.Server.ReadTimeoutMs)
	setInt(&dst.Server.WriteTimeoutMs, src.Server.WriteTimeoutMs)
	setInt(&dst.Server.ShutdownTimeoutMs, src.Server.ShutdownTimeoutMs)

	setStr(&dst.LLM.BaseURL, src.LLM.BaseURL)
	setStr(&dst.LLM.Model, src.LLM.Model)
	setInt(&dst.LLM.TimeoutMs, src.LLM.TimeoutMs)

	setStr(&dst.Search.BaseURL, src.Search.BaseURL)
	setInt(&dst.Search.TimeoutMs, src.Search.TimeoutMs)

	setStr(&dst.Storage.DSN, src.Storage.DSN)
	setStr(&dst.Storage.DataDir, src.Storage.DataDir)
	setStr(&dst.Render.FontRegular, src.Render.FontRegular)
	setStr(&dst.Render.FontBold, src.Render.FontBold)

	var present struct {
		Search  map[string]any `yaml:"search"`
		General map[string]any `yaml:"general"`
	}
	_ = yaml.Unmarshal(raw, &present)
	if _, ok := present.Search["enabled"]; ok {
		dst.Search.Enabled = src.Search.Enabled
	}
	if _, ok := present.General["telemetry_opt_in"]; ok {
		dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	}

	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// override binds a dotted config key to its env var and setter.
type override struct {
	key   string
	env   string
	apply func(cfg *AppConfig, v string)
}

var overrides = []override{
	{"server.addr", EnvAddr, func(c *AppConfig, v string) { c.Server.Addr = v }},
	{"llm.base_url", EnvLLMBaseURL, func(c *AppConfig, v string) { c.LLM.BaseURL = v }},
	{"llm.model", EnvLLMModel, func(c *AppConfig, v string) { c.LLM.Model = v }},
	{"llm.timeout_ms", EnvLLMTimeoutMs, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.TimeoutMs = n
		}
	}},
	{"search.enabled", EnvSearchEnabled, func(c *AppConfig, v string) { c.Search.Enabled = envBool(v) }},
	{"search.base_url", EnvSearchBaseURL, func(c *AppConfig, v string) { c.Search.BaseURL = v }},
	{"storage.dsn", EnvStorageDSN, func(c *AppConfig, v string) { c.Storage.DSN = v }},
	{"storage.data_dir", EnvDataDir, func(c *AppConfig, v string) { c.Storage.DataDir = v }},
	{"render.font_regular", EnvFontRegular, func(c *AppConfig, v string) { c.Render.FontRegular = v }},
	{"render.font_bold", EnvFontBold, func(c *AppConfig, v string) { c.Render.FontBold = v }},
	{"general.telemetry_opt_in", EnvTelemetryOptIn, func(c *AppConfig, v string) { c.General.TelemetryOptIn = envBool(v) }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = envBool(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func applyEnvOverrides(cfg *AppConfig) {
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			o.apply(cfg, v)
		}
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range overrides {
		if o.key == key && os.Getenv(o.env) != "" {
			return o.env, true
		}
	}
	return "", false
}

// Keys lists the dotted keys that accept environment overrides, in display order.
func Keys() []string {
	out := make([]string, len(overrides))
	for i, o := range overrides {
		out[i] = o.key
	}
	return out
}

// Millis converts a millisecond setting into a duration, falling back to def when unset.
func Millis(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
