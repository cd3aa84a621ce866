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

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type CatalogConfig struct {
	URL        string `yaml:"url"` // overrides sheet_id/sheet_title when set
	SheetID    string `yaml:"sheet_id"`
	SheetTitle string `yaml:"sheet_title"`
	Format     string `yaml:"format"` // auto | csv | xlsx | html
	TimeoutMs  int    `yaml:"timeout_ms"`
	Attempts   int    `yaml:"attempts"`
	BackoffMs  int    `yaml:"backoff_ms"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // sqlite | file | memory
	Path      string `yaml:"path"`
	KeyPrefix string `yaml:"key_prefix"`
}

type RenderConfig struct {
	FontURL        string `yaml:"font_url"`
	BodyFontURL    string `yaml:"body_font_url"`
	FontTimeoutMs  int    `yaml:"font_timeout_ms"`
	ImageTimeoutMs int    `yaml:"image_timeout_ms"`
	MaxImageBytes  int64  `yaml:"max_image_bytes"`
	RoundedCorners bool   `yaml:"rounded_corners"`
	JPEGQuality    int    `yaml:"jpeg_quality"`
	FilePrefix     string `yaml:"file_prefix"`
	OutDir         string `yaml:"out_dir"`
	Background     string `yaml:"background"`
	CardColor      string `yaml:"card_color"`
	BorderColor    string `yaml:"border_color"`
}

// Wished/owned presentation policies.
const (
	PolicyHide = "hide"
	PolicyLock = "lock"
	PolicyShow = "show"
)

type PresentationConfig struct {
	WishedOwnedPolicy string `yaml:"wished_owned_policy"`
	UndoCoalesceMs    int    `yaml:"undo_coalesce_ms"` // 0 records every change
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeoutMs  int      `yaml:"read_timeout_ms"`
	WriteTimeoutMs int      `yaml:"write_timeout_ms"`
}

type GeneralConfig struct {
	TelemetryOptIn    bool   `yaml:"telemetry_opt_in"`
	TelemetryEndpoint string `yaml:"telemetry_endpoint"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int                `yaml:"config_version"`
	Catalog       CatalogConfig      `yaml:"catalog"`
	Storage       StorageConfig      `yaml:"storage"`
	Render        RenderConfig       `yaml:"render"`
	Presentation  PresentationConfig `yaml:"presentation"`
	Server        ServerConfig       `yaml:"server"`
	General       GeneralConfig      `yaml:"general"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DefaultFontURL is the display font used for collage titles.
const DefaultFontURL = "https://github.com/google/fonts/raw/main/ofl/jua/Jua-Regular.ttf"

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Catalog:       CatalogConfig{Format: "auto", TimeoutMs: 15000, Attempts: 3, BackoffMs: 1000},
		Storage:       StorageConfig{Driver: "sqlite", KeyPrefix: "nongdam_"},
		Render: RenderConfig{
			FontURL:        DefaultFontURL,
			FontTimeoutMs:  3000,
			ImageTimeoutMs: 10000,
			MaxImageBytes:  20 << 20,
			RoundedCorners: true,
			JPEGQuality:    90,
			FilePrefix:     "nongdam",
			OutDir:         ".",
			Background:     "#fdfbf7",
			CardColor:      "#ffffff",
			BorderColor:    "#eae8e4",
		},
		Presentation: PresentationConfig{WishedOwnedPolicy: PolicyHide},
		Server:       ServerConfig{Addr: "127.0.0.1:8787", AllowedOrigins: []string{"*"}, ReadTimeoutMs: 15000, WriteTimeoutMs: 60000},
		General:      GeneralConfig{TelemetryOptIn: false},
		Logging:      LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvCatalogURL        = "GCO_CATALOG_URL"
	EnvCatalogFormat     = "GCO_CATALOG_FORMAT"
	EnvStorageDriver     = "GCO_STORAGE_DRIVER"
	EnvStoragePath       = "GCO_STORAGE_PATH"
	EnvFontURL           = "GCO_FONT_URL"
	EnvFontTimeoutMs     = "GCO_FONT_TIMEOUT_MS"
	EnvRoundedCorners    = "GCO_ROUNDED_CORNERS"
	EnvOutDir            = "GCO_OUT_DIR"
	EnvWishedOwnedPolicy = "GCO_WISHED_OWNED_POLICY"
	EnvServerAddr        = "GCO_SERVER_ADDR"
	EnvTelemetryOptIn    = "GCO_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCO_LOG_LEVEL"
	EnvLogFormat = "GCO_LOG_FORMAT"
	EnvLogSource = "GCO_LOG_SOURCE"
	EnvLogFile   = "GCO_LOG_FILE"
)

type envBinding struct {
	key   string // dotted yaml path
	env   string
	apply func(cfg *AppConfig, v string)
}

var envBindings = []envBinding{
	{"catalog.url", EnvCatalogURL, func(c *AppConfig, v string) { c.Catalog.URL = v }},
	{"catalog.format", EnvCatalogFormat, func(c *AppConfig, v string) { c.Catalog.Format = strings.ToLower(v) }},
	{"storage.driver", EnvStorageDriver, func(c *AppConfig, v string) { c.Storage.Driver = strings.ToLower(v) }},
	{"storage.path", EnvStoragePath, func(c *AppConfig, v string) { c.Storage.Path = v }},
	{"render.font_url", EnvFontURL, func(c *AppConfig, v string) { c.Render.FontURL = v }},
	{"render.font_timeout_ms", EnvFontTimeoutMs, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Render.FontTimeoutMs = n
		}
	}},
	{"render.rounded_corners", EnvRoundedCorners, func(c *AppConfig, v string) { c.Render.RoundedCorners = truthy(v) }},
	{"render.out_dir", EnvOutDir, func(c *AppConfig, v string) { c.Render.OutDir = v }},
	{"presentation.wished_owned_policy", EnvWishedOwnedPolicy, func(c *AppConfig, v string) {
		c.Presentation.WishedOwnedPolicy = strings.ToLower(v)
	}},
	{"server.addr", EnvServerAddr, func(c *AppConfig, v string) { c.Server.Addr = v }},
	{"general.telemetry_opt_in", EnvTelemetryOptIn, func(c *AppConfig, v string) { c.General.TelemetryOptIn = truthy(v) }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = truthy(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func truthy(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCollector")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCollector")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gocollector")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gocollector")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The catalog token comes from the keyring and is returned separately.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, "", err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a malformed one is.
func LoadFrom(path string) (AppConfig, string, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// unmarshal on top of the defaults so absent keys keep them
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg, token)
}

// SaveTo is Save with an explicit file path.
func SaveTo(path string, cfg AppConfig, token string) error {
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
	// catalog
	dst.Catalog.URL = strings.TrimSpace(src.Catalog.URL)
	if s := strings.TrimSpace(src.Catalog.SheetID); s != "" {
		dst.Catalog.SheetID = s
	}
	if s := strings.TrimSpace(src.Catalog.SheetTitle); s != "" {
		dst.Catalog.SheetTitle = s
	}
	if s := strings.TrimSpace(src.Catalog.Format); s != "" {
		dst.Catalog.Format = strings.ToLower(s)
	}
	if src.Catalog.TimeoutMs > 0 {
		dst.Catalog.TimeoutMs = src.Catalog.TimeoutMs
	}
	if src.Catalog.Attempts > 0 {
		dst.Catalog.Attempts = src.Catalog.Attempts
	}
	if src.Catalog.BackoffMs > 0 {
		dst.Catalog.BackoffMs = src.Catalog.BackoffMs
	}
	// storage
	if s := strings.TrimSpace(src.Storage.Driver); s != "" {
		dst.Storage.Driver = strings.ToLower(s)
	}
	dst.Storage.Path = strings.TrimSpace(src.Storage.Path)
	if s := strings.TrimSpace(src.Storage.KeyPrefix); s != "" {
		dst.Storage.KeyPrefix = s
	}
	// render; booleans copy directly so user preferences persist
	dst.Render.FontURL = strings.TrimSpace(src.Render.FontURL)
	dst.Render.BodyFontURL = strings.TrimSpace(src.Render.BodyFontURL)
	if src.Render.FontTimeoutMs > 0 {
		dst.Render.FontTimeoutMs = src.Render.FontTimeoutMs
	}
	if src.Render.ImageTimeoutMs > 0 {
		dst.Render.ImageTimeoutMs = src.Render.ImageTimeoutMs
	}
	if src.Render.MaxImageBytes > 0 {
		dst.Render.MaxImageBytes = src.Render.MaxImageBytes
	}
	dst.Render.RoundedCorners = src.Render.RoundedCorners
	if src.Render.JPEGQuality > 0 && src.Render.JPEGQuality <= 100 {
		dst.Render.JPEGQuality = src.Render.JPEGQuality
	}
	for _, f := range []struct{ dst, src *string }{
		{&dst.Render.FilePrefix, &src.Render.FilePrefix},
		{&dst.Render.OutDir, &src.Render.OutDir},
		{&dst.Render.Background, &src.Render.Background},
		{&dst.Render.CardColor, &src.Render.CardColor},
		{&dst.Render.BorderColor, &src.Render.BorderColor},
	} {
		if s := strings.TrimSpace(*f.src); s != "" {
			*f.dst = s
		}
	}
	// presentation
	switch p := strings.ToLower(strings.TrimSpace(src.Presentation.WishedOwnedPolicy)); p {
	case PolicyHide, PolicyLock, PolicyShow:
		dst.Presentation.WishedOwnedPolicy = p
	}
	if src.Presentation.UndoCoalesceMs > 0 {
		dst.Presentation.UndoCoalesceMs = src.Presentation.UndoCoalesceMs
	}
	// server
	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	if src.Server.AllowedOrigins != nil {
		dst.Server.AllowedOrigins = append([]string(nil), src.Server.AllowedOrigins...)
	}
	if src.Server.ReadTimeoutMs > 0 {
		dst.Server.ReadTimeoutMs = src.Server.ReadTimeoutMs
	}
	if src.Server.WriteTimeoutMs > 0 {
		dst.Server.WriteTimeoutMs = src.Server.WriteTimeoutMs
	}
	// general
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.TelemetryEndpoint = strings.TrimSpace(src.General.TelemetryEndpoint)
	// logging
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
	for _, b := range envBindings {
		if v := strings.TrimSpace(os.Getenv(b.env)); v != "" {
			b.apply(cfg, v)
		}
	}
}

// EnvKeys lists the dotted config keys that accept an environment override.
func EnvKeys() []string {
	keys := make([]string, 0, len(envBindings))
	for _, b := range envBindings {
		keys = append(keys, b.key)
	}
	return keys
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, b := range envBindings {
		if b.key == key && os.Getenv(b.env) != "" {
			return b.env, true
		}
	}
	return "", false
}

func ms(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}

// Timeout returns the catalog request timeout.
func (c CatalogConfig) Timeout() time.Duration { return ms(c.TimeoutMs, 15000) }

// Backoff returns the initial retry delay.
func (c CatalogConfig) Backoff() time.Duration { return ms(c.BackoffMs, 1000) }

// FontTimeout returns the font race timeout.
func (r RenderConfig) FontTimeout() time.Duration { return ms(r.FontTimeoutMs, 3000) }

// ImageTimeout returns the per-image request timeout.
func (r RenderConfig) ImageTimeout() time.Duration { return ms(r.ImageTimeoutMs, 10000) }

// ReadTimeout returns the HTTP server read timeout.
func (s ServerConfig) ReadTimeout() time.Duration { return ms(s.ReadTimeoutMs, 15000) }

// WriteTimeout returns the HTTP server write timeout.
func (s ServerConfig) WriteTimeout() time.Duration { return ms(s.WriteTimeoutMs, 60000) }

// UndoCoalesce returns the undo coalescing window; zero disables it.
func (p PresentationConfig) UndoCoalesce() time.Duration {
	if p.UndoCoalesceMs <= 0 {
		return 0
	}
	return time.Duration(p.UndoCoalesceMs) * time.Millisecond
}
