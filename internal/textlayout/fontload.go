/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	applog "gocollector/internal/log"
)

// DefaultFontTimeout bounds how long a collage waits for its display font.
const DefaultFontTimeout = 3 * time.Second

// maxFontBytes caps downloaded font files.
const maxFontBytes = 16 << 20

// FontLoader fetches raw font data from a URL or local path.
type FontLoader interface {
	LoadFont(ctx context.Context, src string) ([]byte, error)
}

// FontLoaderFunc adapts a function to FontLoader.
type FontLoaderFunc func(ctx context.Context, src string) ([]byte, error)

// LoadFont calls f(ctx, src).
func (f FontLoaderFunc) LoadFont(ctx context.Context, src string) ([]byte, error) {
	return f(ctx, src)
}

// HTTPFontLoader loads fonts over http(s) and from the local filesystem.
type HTTPFontLoader struct {
	Client *http.Client
}

func (l HTTPFontLoader) LoadFont(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(strings.TrimPrefix(src, "file://"))
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("font %s: status %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("font %s exceeds %d bytes", src, maxFontBytes)
	}
	return data, nil
}

var errFontTimeout = errors.New("font load timed out")

// LoadWithTimeout races a font load against a timer and registers the font
// under family when it wins. It returns false on failure, timeout or
// cancellation; those are logged and otherwise ignored, so text renders with
// the fallback face. An empty src is a no-op.
func LoadWithTimeout(ctx context.Context, lib *FontLibrary, loader FontLoader, family string, weight int, src string, timeout time.Duration) bool {
	if src == "" || lib == nil || loader == nil {
		return false
	}
	if timeout <= 0 {
		timeout = DefaultFontTimeout
	}
	l := applog.WithOperation(applog.WithComponent("fonts"), "load").With(slog.String("family", family), slog.String("src", src))

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := loader.LoadFont(lctx, src)
		ch <- result{data: data, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	var err error
	select {
	case r := <-ch:
		err = r.err
		if err == nil {
			err = lib.LoadBytes(family, weight, r.data)
		}
	case <-timer.C:
		err = errFontTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		l.Warn("font unavailable, using fallback", slog.Any("err", err), slog.Duration("timeout", timeout))
		return false
	}
	l.Debug("font registered")
	return true
}
