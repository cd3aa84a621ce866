/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders collages of selected items and encodes them as PNG,
// JPEG or PDF.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"runtime/debug"
	"time"

	"gocollector/internal/domain"
	"gocollector/internal/layout"
	applog "gocollector/internal/log"
	"gocollector/internal/textlayout"
	"gocollector/internal/vector"
)

// ErrRender wraps every unexpected failure while drawing a collage.
var ErrRender = errors.New("render failed")

// Fonts configures the display and body font downloads.
type Fonts struct {
	DisplayURL string // registered as textlayout.DisplayFamily
	BodyURL    string // registered as textlayout.BodyFamily
	Timeout    time.Duration
	Loader     textlayout.FontLoader
}

// Renderer draws collages. A Renderer may be reused; Render must not be
// called concurrently with LoadFonts.
type Renderer struct {
	Lib            *textlayout.FontLibrary
	Fonts          Fonts
	Images         ImageLoader
	Theme          Theme
	RoundedCorners bool

	provider textlayout.Provider
}

// NewRenderer returns a renderer with the default theme and rounded corners.
func NewRenderer(fonts Fonts, images ImageLoader) *Renderer {
	if fonts.Loader == nil {
		fonts.Loader = textlayout.HTTPFontLoader{}
	}
	if images == nil {
		images = HTTPImageLoader{}
	}
	lib := textlayout.NewFontLibrary()
	return &Renderer{
		Lib:            lib,
		Fonts:          fonts,
		Images:         images,
		Theme:          DefaultTheme(),
		RoundedCorners: true,
		provider:       textlayout.OTProvider{Lib: lib},
	}
}

func (r *Renderer) fonts() textlayout.Provider {
	if r.provider == nil {
		r.provider = textlayout.OTProvider{Lib: r.Lib}
	}
	return r.provider
}

// LoadFonts races the configured font downloads against one shared timeout.
// Missing fonts are not an error; text then uses the embedded fallback. Fonts
// already registered are not fetched again.
func (r *Renderer) LoadFonts(ctx context.Context) {
	if r.Lib == nil {
		r.Lib = textlayout.NewFontLibrary()
		r.provider = nil
	}
	timeout := r.Fonts.Timeout
	if timeout <= 0 {
		timeout = textlayout.DefaultFontTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for _, f := range []struct {
		family string
		url    string
	}{
		{textlayout.DisplayFamily, r.Fonts.DisplayURL},
		{textlayout.BodyFamily, r.Fonts.BodyURL},
	} {
		if f.url == "" || r.Lib.Has(f.family) {
			continue
		}
		textlayout.LoadWithTimeout(dctx, r.Lib, r.Fonts.Loader, f.family, 700, f.url, timeout)
	}
}

// Render draws items onto a new canvas sized by plan. Images are loaded one at
// a time in item order; an image that fails to load leaves its card empty.
func (r *Renderer) Render(ctx context.Context, items []domain.Item, plan layout.Plan, opts domain.RenderOptions) (img *image.RGBA, err error) {
	l := applog.WithOperation(applog.WithComponent("export"), "render").With(
		slog.Int("items", len(items)), slog.String("mode", string(plan.Mode)))
	defer func() {
		if rec := recover(); rec != nil {
			l.Error("panic while drawing", slog.Any("panic", rec), slog.String("stack", string(debug.Stack())))
			img, err = nil, fmt.Errorf("%w: %v", ErrRender, rec)
		}
	}()
	if len(items) == 0 || plan.Count != len(items) || plan.Width <= 0 || plan.Height <= 0 {
		return nil, fmt.Errorf("%w: plan for %d items does not match %d items", ErrRender, plan.Count, len(items))
	}
	start := time.Now()

	canvas := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(toNRGBA(r.Theme.Background)), image.Point{}, draw.Src)
	r.drawHeader(canvas, plan, opts)

	compact := plan.Mode == domain.ModeCompact
	shape := vector.CardShape(float32(plan.CardW), float32(plan.CardH), CardRadius, compact)
	cardMask := vector.Mask(shape, plan.CardW, plan.CardH)
	pad := BorderWidth
	border := vector.Stroke(float32(plan.CardW), float32(plan.CardH), CardRadius, BorderWidth, compact, pad)

	missing := 0
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, y := plan.Origin(i)
		at := image.Pt(x, y)

		drawShadow(canvas, cardMask, at, ShadowOffset, ShadowSigma, toNRGBA(r.Theme.Shadow))
		fillMask(canvas, cardMask, at, toNRGBA(r.Theme.Card))

		if src, lerr := r.loadImage(ctx, it.Image); lerr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			missing++
			l.Warn("image unavailable", slog.String("id", it.ID), slog.Any("err", lerr))
		} else {
			var scaled image.Image
			var dst image.Rectangle
			if compact {
				scaled, dst = fitCover(src, image.Rect(0, 0, plan.CardW, plan.CardH))
			} else {
				scaled, dst = fitContain(src, image.Rect(layout.ImageBoxX, layout.ImageBoxY,
					layout.ImageBoxX+layout.ImageBoxW, layout.ImageBoxY+layout.ImageBoxH))
			}
			drawClipped(canvas, scaled, dst, cardMask, at)
		}

		fillMask(canvas, border, at.Sub(image.Pt(pad, pad)), toNRGBA(r.Theme.Border))
		if !compact {
			r.drawCardText(canvas, it, plan, at, opts)
		}
	}

	out := canvas
	if r.RoundedCorners {
		out = clipCanvas(canvas, CanvasRadius)
	}
	l.Info("collage rendered",
		slog.Int("width", plan.Width), slog.Int("height", plan.Height),
		slog.Int("missing_images", missing), slog.Duration("took", time.Since(start)))
	return out, nil
}

func (r *Renderer) loadImage(ctx context.Context, src string) (image.Image, error) {
	if trimmed(src) == "" {
		return nil, errors.New("no image")
	}
	if r.Images == nil {
		return nil, errors.New("no image loader")
	}
	return r.Images.Load(ctx, src)
}

func (r *Renderer) drawHeader(canvas *image.RGBA, plan layout.Plan, opts domain.RenderOptions) {
	cx := plan.Width / 2
	if plan.HasTitle() {
		if title := trimmed(opts.Title); title != "" {
			st := textlayout.MustStyle(textlayout.StyleTitle)
			face, _ := r.fonts().Resolve(st.Font)
			drawMiddle(canvas, face, title, cx, plan.TitleCenterY(), toNRGBA(st.Color))
		}
	}
	if plan.HasNickname() {
		st := textlayout.MustStyle(textlayout.StyleNickname)
		face, _ := r.fonts().Resolve(st.Font)
		drawMiddle(canvas, face, opts.NicknameLine(), cx, plan.NicknameCenterY(), toNRGBA(st.Color))
	}
}

func (r *Renderer) drawCardText(canvas *image.RGBA, it domain.Item, plan layout.Plan, at image.Point, opts domain.RenderOptions) {
	cx := at.X + plan.CardW/2
	if opts.ShowName {
		st := textlayout.MustStyle(textlayout.StyleName)
		box := textlayout.NewWordWrap(r.fonts()).Layout(it.Name, st.Font, layout.TextWidth, st.LineHeight)
		y := at.Y + layout.NameBaseline
		for _, ln := range box.Lines {
			drawCentered(canvas, box.Face, ln.Text, cx, y, toNRGBA(st.Color))
			y += int(box.LineHeight)
		}
	}
	if opts.ShowPrice {
		st := textlayout.MustStyle(textlayout.StylePrice)
		face, _ := r.fonts().Resolve(st.Font)
		drawCentered(canvas, face, it.Price, cx, at.Y+layout.PriceBaselineY(opts.ShowName), toNRGBA(st.Color))
	}
}
