/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"gocollector/internal/catalog"
	"gocollector/internal/config"
	"gocollector/internal/domain"
	"gocollector/internal/export"
	applog "gocollector/internal/log"
	"gocollector/internal/selection"
	"gocollector/internal/session"
	"gocollector/internal/storage"
	"gocollector/internal/telemetry"
	"gocollector/internal/textlayout"
)

// App carries the loaded configuration and the lazily opened stores shared
// by all commands of one invocation.
type App struct {
	ConfigPath string

	cfg     config.AppConfig
	token   string
	loaded  bool
	backend storage.Backend
	sess    *session.Session
	tel     *telemetry.Client
}

// NewApp returns an App that has not loaded anything yet.
func NewApp() *App { return &App{} }

// Setup loads configuration, initializes logging and telemetry. A broken
// config file is reported and the defaults are used.
func (a *App) Setup() {
	var err error
	if a.ConfigPath != "" {
		a.cfg, a.token, err = config.LoadFrom(a.ConfigPath)
	} else {
		a.cfg, a.token, err = config.Load()
	}
	applog.Init(applog.Options{
		Level:     a.cfg.Logging.Level,
		Format:    a.cfg.Logging.Format,
		AddSource: a.cfg.Logging.Source,
		File:      a.cfg.Logging.File,
	})
	if err != nil {
		applog.WithComponent("cli").Warn("config not loaded, using defaults", slog.Any("err", err))
	}
	tc := telemetry.FromEnv()
	tc.OptIn = tc.OptIn || a.cfg.General.TelemetryOptIn
	if tc.EventsURL == "" {
		tc.EventsURL = a.cfg.General.TelemetryEndpoint
	}
	a.tel = telemetry.NewDefault(tc)
	a.loaded = true
}

// Config returns the effective configuration.
func (a *App) Config() config.AppConfig {
	if !a.loaded {
		a.Setup()
	}
	return a.cfg
}

// configFile is the --config path or the per-user default.
func (a *App) configFile() (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	return config.ConfigPath()
}

// StorePath resolves the storage location for the configured driver.
func (a *App) StorePath() string {
	cfg := a.Config()
	if p := strings.TrimSpace(cfg.Storage.Path); p != "" {
		return p
	}
	if cfg.Storage.Driver == storage.DriverFile {
		return filepath.Join(filepath.Dir(storage.DefaultPath()), "selections")
	}
	return storage.DefaultPath()
}

// CrashDir is where crash reports land.
func CrashDir() string { return filepath.Join(filepath.Dir(storage.DefaultPath()), "crash") }

// Renderer builds a collage renderer from the render config.
func (a *App) Renderer() *export.Renderer {
	rc := a.Config().Render
	r := export.NewRenderer(export.Fonts{
		DisplayURL: rc.FontURL,
		BodyURL:    rc.BodyFontURL,
		Timeout:    rc.FontTimeout(),
		Loader:     textlayout.HTTPFontLoader{},
	}, export.HTTPImageLoader{Timeout: rc.ImageTimeout(), MaxBytes: rc.MaxImageBytes})
	r.RoundedCorners = rc.RoundedCorners
	r.Theme.Background = hexOr(rc.Background, r.Theme.Background)
	r.Theme.Card = hexOr(rc.CardColor, r.Theme.Card)
	r.Theme.Border = hexOr(rc.BorderColor, r.Theme.Border)
	return r
}

// CatalogLoader builds the catalog loader, honoring overrides.
func (a *App) CatalogLoader() *catalog.Loader {
	cc := a.Config().Catalog
	return catalog.NewLoader(catalog.Options{
		URL:        cc.URL,
		SheetID:    cc.SheetID,
		SheetTitle: cc.SheetTitle,
		Format:     cc.Format,
		Timeout:    cc.Timeout(),
		Attempts:   cc.Attempts,
		Backoff:    cc.Backoff(),
		Token:      a.token,
	})
}

// Session opens the store, loads the catalog and returns the session. The
// catalog failure, if any, is part of the session view, not an error.
func (a *App) Session(ctx context.Context) (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	cfg := a.Config()
	backend, err := storage.Open(cfg.Storage.Driver, a.StorePath())
	if err != nil {
		return nil, err
	}
	a.backend = backend
	store := selection.Open(ctx, backend, cfg.Storage.KeyPrefix)
	sess := session.New(store, a.Renderer(), session.Options{
		Policy:       cfg.Presentation.WishedOwnedPolicy,
		FilePrefix:   cfg.Render.FilePrefix,
		JPEGQuality:  cfg.Render.JPEGQuality,
		UndoCoalesce: cfg.Presentation.UndoCoalesce(),
		Telemetry:    a.tel,
	})
	if err := sess.LoadCatalog(ctx, a.CatalogLoader()); err != nil {
		applog.WithComponent("cli").Warn("catalog unavailable", slog.Any("err", err))
	}
	a.sess = sess
	return sess, nil
}

// Close closes the store. Telemetry is drained by Execute.
func (a *App) Close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	return err
}

func (a *App) closeTelemetry() {
	if a.tel == nil {
		return
	}
	a.tel.Flush(context.Background())
	a.tel.Close()
}

func hexOr(s string, def domain.Color) domain.Color {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return domain.Hex(s)
}
