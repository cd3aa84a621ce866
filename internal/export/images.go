/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // register WebP decoder

	"gocollector/internal/version"
)

// ImageLoader resolves an item image reference to a decoded image.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load calls f(ctx, src).
func (f ImageLoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// HTTPImageLoader fetches images over http(s) or from local paths and decodes
// PNG, JPEG, GIF and WebP.
type HTTPImageLoader struct {
	Client   *http.Client
	Timeout  time.Duration // per request; default 10s
	MaxBytes int64         // default 20 MiB
}

func (l HTTPImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("image: empty source")
	}
	raw, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", src, err)
	}
	return img, nil
}

func (l HTTPImageLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readLimited(f, limit, src)
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(rctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "gocollector/"+version.Version)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image %s: status %d", src, resp.StatusCode)
	}
	return readLimited(resp.Body, limit, src)
}

func readLimited(r io.Reader, limit int64, src string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("image %s exceeds %d bytes", src, limit)
	}
	return raw, nil
}
