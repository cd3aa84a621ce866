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
	"strings"
	"testing"
)

type memTokens map[string]string

func (m memTokens) Get(service, key string) (string, error) { return m[service+"/"+key], nil }
func (m memTokens) Set(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}
func (m memTokens) Delete(service, key string) error {
	delete(m, service+"/"+key)
	return nil
}

func useMemTokens(t *testing.T) memTokens {
	t.Helper()
	m := memTokens{}
	prev := SetTokenStore(m)
	t.Cleanup(func() { SetTokenStore(prev) })
	return m
}

func TestEnvOverridesCatalogURL(t *testing.T) {
	useMemTokens(t)
	t.Setenv(EnvCatalogURL, "https://example.test/sheet.csv")
	cfg, _, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got, want := cfg.Catalog.URL, "https://example.test/sheet.csv"; got != want {
		t.Fatalf("Catalog.URL = %q, want %q", got, want)
	}
	if env, ok := EnvOverrideFor("catalog.url"); !ok || env != EnvCatalogURL {
		t.Fatalf("EnvOverrideFor(catalog.url) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("storage.path"); ok {
		t.Fatalf("storage.path should not be overridden")
	}
	keys := strings.Join(EnvKeys(), ",")
	if !strings.HasPrefix(keys, "catalog.url,") || !strings.Contains(keys, "presentation.wished_owned_policy") {
		t.Fatalf("EnvKeys = %s", keys)
	}
}

func TestEnvOverridesTelemetryAndCorners(t *testing.T) {
	useMemTokens(t)
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvRoundedCorners, "0")
	cfg, _, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn || cfg.Render.RoundedCorners {
		t.Fatalf("env overrides not applied: %#v %#v", cfg.General, cfg.Render)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	useMemTokens(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "catalog:\n  format: XLSX\npresentation:\n  wished_owned_policy: lock\nserver:\n  addr: ':9000'\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Catalog.Format != "xlsx" || cfg.Presentation.WishedOwnedPolicy != PolicyLock || cfg.Server.Addr != ":9000" {
		t.Fatalf("file values not merged: %#v", cfg)
	}
	if !cfg.Render.RoundedCorners || cfg.Render.FontURL != DefaultFontURL || cfg.Storage.KeyPrefix != "nongdam_" {
		t.Fatalf("defaults lost for absent keys: %#v", cfg.Render)
	}
}

func TestLoadFrom_Malformed(t *testing.T) {
	useMemTokens(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	_ = os.WriteFile(path, []byte("catalog: [unterminated"), 0o600)
	cfg, _, err := LoadFrom(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Render.JPEGQuality != 90 {
		t.Fatalf("defaults should still be returned on error")
	}
}

func TestMergeIgnoresUnknownPolicy(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Presentation.WishedOwnedPolicy = "explode"
	mergeInto(&dst, &src)
	if dst.Presentation.WishedOwnedPolicy != PolicyHide {
		t.Fatalf("unknown policy merged: %q", dst.Presentation.WishedOwnedPolicy)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gco.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gco.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	useMemTokens(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/tmp/gco.log")
	cfg, _, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/gco.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveTo_RoundTripAndToken(t *testing.T) {
	tokens := useMemTokens(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Defaults()
	cfg.Render.OutDir = "/tmp/collages"
	cfg.Render.RoundedCorners = false
	if err := SaveTo(path, cfg, "s3cret"); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, tok, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Render.OutDir != "/tmp/collages" || got.Render.RoundedCorners {
		t.Fatalf("round trip lost values: %#v", got.Render)
	}
	if tok != "s3cret" || tokens[keyringService+"/"+keyringToken] != "s3cret" {
		t.Fatalf("token not stored in keyring: %q", tok)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, tok, _ := LoadFrom(path); tok != "" {
		t.Fatalf("token should be gone, got %q", tok)
	}
}

func TestDurations(t *testing.T) {
	var r RenderConfig
	if r.FontTimeout().Milliseconds() != 3000 {
		t.Fatalf("default font timeout = %v", r.FontTimeout())
	}
	c := CatalogConfig{TimeoutMs: 250}
	if c.Timeout().Milliseconds() != 250 {
		t.Fatalf("catalog timeout = %v", c.Timeout())
	}
	if (PresentationConfig{}).UndoCoalesce() != 0 {
		t.Fatalf("undo coalescing should default to off")
	}
	if p := (PresentationConfig{UndoCoalesceMs: 400}); p.UndoCoalesce().Milliseconds() != 400 {
		t.Fatalf("undo coalesce = %v", p.UndoCoalesce())
	}
}
