/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog loads the item catalog from a published spreadsheet or a
// local export of it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocollector/internal/domain"
	applog "gocollector/internal/log"
	"gocollector/internal/version"
)

// Default spreadsheet published by the collection maintainers.
const (
	DefaultSheetID    = "1hTPuwTZkRnPVoo5GUUC1fhuxbscwJrLdWVG-eHPWaIM"
	DefaultSheetTitle = "시트1"
)

const maxBodyBytes = 32 << 20

// SheetURL builds the gviz CSV export URL for a sheet tab.
func SheetURL(sheetID, title string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		url.PathEscape(sheetID), url.QueryEscape(title))
}

// Options configure a Loader. Zero values fall back to the defaults.
type Options struct {
	URL        string // http(s) URL or local path; empty builds SheetURL
	SheetID    string
	SheetTitle string
	Format     string // auto, csv, xlsx, html
	Timeout    time.Duration
	Attempts   int
	Backoff    time.Duration
	Token      string // optional bearer token
}

// Source returns the effective location.
func (o Options) Source() string {
	if strings.TrimSpace(o.URL) != "" {
		return strings.TrimSpace(o.URL)
	}
	id, title := o.SheetID, o.SheetTitle
	if id == "" {
		id = DefaultSheetID
	}
	if title == "" {
		title = DefaultSheetTitle
	}
	return SheetURL(id, title)
}

// Loader fetches and decodes the catalog.
type Loader struct {
	Client *http.Client
	Opts   Options
}

func NewLoader(opts Options) *Loader {
	return &Loader{Client: &http.Client{}, Opts: opts}
}

// Load fetches the source with retries and builds the catalog.
func (l *Loader) Load(ctx context.Context) (*domain.Catalog, error) {
	src := l.Opts.Source()
	lg := applog.WithOperation(applog.WithComponent("catalog"), "load").With(slog.String("src", src))
	start := time.Now()

	data, ctype, err := l.fetch(ctx, src, lg)
	if err != nil {
		lg.Error("catalog fetch failed", slog.Any("err", err))
		return nil, err
	}
	format := l.Opts.Format
	if format == "" || format == FormatAuto {
		format = DetectFormat(src, ctype, data)
	}
	cat, dropped, err := Parse(format, data)
	if err != nil {
		lg.Error("catalog parse failed", slog.String("format", format), slog.Any("err", err))
		return nil, err
	}
	if dropped > 0 {
		lg.Warn("duplicate ids dropped", slog.Int("dropped", dropped))
	}
	lg.Info("catalog loaded", slog.Int("items", cat.Len()), slog.String("format", format), slog.Duration("took", time.Since(start)))
	return cat, nil
}

func (l *Loader) fetch(ctx context.Context, src string, lg *slog.Logger) ([]byte, string, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		b, err := os.ReadFile(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, "", fmt.Errorf("read catalog: %w", err)
		}
		return b, "", nil
	}
	timeout := l.Opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	attempts := l.Opts.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := l.Opts.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	var ctype string
	err := withRetry(ctx, attempts, backoff, lg, func(int) error {
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		req, err := http.NewRequestWithContext(rctx, http.MethodGet, src, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "gocollector/"+version.Version)
		if l.Opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+l.Opts.Token)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return transient{err}
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return transient{fmt.Errorf("catalog: status %d", resp.StatusCode)}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("catalog: status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		if err != nil {
			return transient{err}
		}
		if len(b) > maxBodyBytes {
			return fmt.Errorf("catalog: body exceeds %d bytes", maxBodyBytes)
		}
		body, ctype = b, resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return body, ctype, nil
}

// DetectFormat guesses the table format from content type, file extension or
// the payload itself. CSV is the default.
func DetectFormat(src, contentType string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case strings.Contains(mt, "spreadsheetml"):
			return FormatXLSX
		case mt == "text/html" || mt == "application/xhtml+xml":
			return FormatHTML
		case mt == "text/csv":
			return FormatCSV
		}
	}
	path := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".html", ".htm":
		return FormatHTML
	case ".csv":
		return FormatCSV
	}
	if len(data) >= 4 && string(data[:4]) == "PK\x03\x04" {
		return FormatXLSX
	}
	head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 512)])))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") || strings.Contains(head, "<table") {
		return FormatHTML
	}
	return FormatCSV
}

// FailureMessage is the user-facing notice for a catalog that failed to load.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return "Failed to load data. Error: " + msg + ". Please check the Google Sheet publishing settings."
}
