/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/gobold"

	"gocollector/internal/domain"
	"gocollector/internal/layout"
	"gocollector/internal/textlayout"
)

var red = color.RGBA{R: 255, A: 255}

func items(ids ...string) []domain.Item {
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Item{ID: id, Name: "Item " + id, Price: "1,000", Image: "img://" + id})
	}
	return out
}

func redLoader(calls *[]string) ImageLoader {
	return ImageLoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		*calls = append(*calls, src)
		return solid(50, 50, red), nil
	})
}

func newTestRenderer(images ImageLoader) *Renderer {
	return NewRenderer(Fonts{}, images)
}

func plan(t *testing.T, n int, o domain.RenderOptions) layout.Plan {
	t.Helper()
	p, err := layout.New(n, layout.FromRender(o))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return p
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

func TestRender_NormalCards(t *testing.T) {
	var calls []string
	r := newTestRenderer(redLoader(&calls))
	opts := domain.DefaultRenderOptions()
	opts.Title = TitleFor(domain.ListOwned, "")
	its := items("A", "C", "E")
	p := plan(t, len(its), opts)

	img, err := r.Render(context.Background(), its, p, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dx() != p.Width || img.Bounds().Dy() != p.Height {
		t.Fatalf("canvas %v, plan %dx%d", img.Bounds(), p.Width, p.Height)
	}
	if p.Columns != 3 || p.Width != 2*60+3*300+2*30 {
		t.Fatalf("unexpected plan: %+v", p)
	}
	want := []string{"img://A", "img://C", "img://E"}
	if len(calls) != 3 || calls[0] != want[0] || calls[1] != want[1] || calls[2] != want[2] {
		t.Fatalf("images loaded out of order: %v", calls)
	}
	for i := range its {
		x, y := p.Origin(i)
		if c := rgbaAt(img, x+150, y+160); c != red {
			t.Fatalf("card %d image center = %v", i, c)
		}
	}
	if a := rgbaAt(img, 0, 0).A; a != 0 {
		t.Fatalf("rounded canvas corner alpha = %d", a)
	}
	bg := toNRGBA(DefaultTheme().Background)
	if c := rgbaAt(img, 5, p.Height/2); c.R != bg.R || c.G != bg.G || c.B != bg.B || c.A != 255 {
		t.Fatalf("background = %v", c)
	}
}

func TestRender_FailedImageLeavesCardEmpty(t *testing.T) {
	n := 0
	loader := ImageLoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		n++
		if src == "img://B" {
			return nil, errors.New("404")
		}
		return solid(10, 10, red), nil
	})
	r := newTestRenderer(loader)
	r.RoundedCorners = false
	opts := domain.DefaultRenderOptions()
	its := items("A", "B", "C")
	p := plan(t, 3, opts)
	img, err := r.Render(context.Background(), its, p, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n != 3 {
		t.Fatalf("loader calls = %d, want 3", n)
	}
	x, y := p.Origin(1)
	if c := rgbaAt(img, x+150, y+160); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("card without image should stay white, got %v", c)
	}
	x, y = p.Origin(2)
	if c := rgbaAt(img, x+150, y+160); c != red {
		t.Fatalf("later image missing after a failure: %v", c)
	}
	if a := rgbaAt(img, 0, 0).A; a != 255 {
		t.Fatalf("square canvas corner alpha = %d", a)
	}
}

func TestRender_CompactCircles(t *testing.T) {
	var calls []string
	r := newTestRenderer(redLoader(&calls))
	opts := domain.DefaultRenderOptions()
	opts.Mode = domain.ModeCompact
	opts.Columns = domain.ColumnsSqrt
	opts.ShowTitle = false
	its := items("1", "2", "3", "4", "5", "6", "7", "8", "9")
	p := plan(t, len(its), opts)
	img, err := r.Render(context.Background(), its, p, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	x, y := p.Origin(4)
	if c := rgbaAt(img, x+120, y+120); c != red {
		t.Fatalf("circle center = %v", c)
	}
	if c := rgbaAt(img, x+3, y+3); c == red {
		t.Fatalf("image leaked outside the circle")
	}
}

func TestRender_PanicBecomesErrRender(t *testing.T) {
	loader := ImageLoaderFunc(func(ctx context.Context, src string) (image.Image, error) { panic("decoder bug") })
	r := newTestRenderer(loader)
	opts := domain.DefaultRenderOptions()
	_, err := r.Render(context.Background(), items("A"), plan(t, 1, opts), opts)
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRender_PlanMismatch(t *testing.T) {
	r := newTestRenderer(nil)
	opts := domain.DefaultRenderOptions()
	if _, err := r.Render(context.Background(), items("A", "B"), plan(t, 1, opts), opts); !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls []string
	r := newTestRenderer(redLoader(&calls))
	opts := domain.DefaultRenderOptions()
	_, err := r.Render(ctx, items("A", "B"), plan(t, 2, opts), opts)
	if !errors.Is(err, context.Canceled) || len(calls) != 0 {
		t.Fatalf("cancelled render = %v after %d loads", err, len(calls))
	}
}

func TestLoadFonts_RegistersAndSkipsLoaded(t *testing.T) {
	n := 0
	loader := textlayout.FontLoaderFunc(func(ctx context.Context, src string) ([]byte, error) {
		n++
		return gobold.TTF, nil
	})
	r := NewRenderer(Fonts{DisplayURL: "mem://display", Loader: loader, Timeout: time.Second}, nil)
	r.LoadFonts(context.Background())
	r.LoadFonts(context.Background())
	if !r.Lib.Has(textlayout.DisplayFamily) || n != 1 {
		t.Fatalf("display font registered=%v loads=%d", r.Lib.Has(textlayout.DisplayFamily), n)
	}
}

func TestLoadFonts_SharesOneDeadline(t *testing.T) {
	loader := textlayout.FontLoaderFunc(func(ctx context.Context, src string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := NewRenderer(Fonts{
		DisplayURL: "mem://display",
		BodyURL:    "mem://body",
		Loader:     loader,
		Timeout:    150 * time.Millisecond,
	}, nil)
	start := time.Now()
	r.LoadFonts(context.Background())
	if took := time.Since(start); took > 280*time.Millisecond {
		t.Fatalf("LoadFonts waited %v for two stalled fonts, want one timeout", took)
	}
	if r.Lib.Has(textlayout.DisplayFamily) || r.Lib.Has(textlayout.BodyFamily) {
		t.Fatalf("stalled fonts registered")
	}
}

func TestTitleFor(t *testing.T) {
	if TitleFor(domain.ListWished, " ") != TitleWished || TitleFor(domain.ListOwned, "") != TitleOwned {
		t.Fatalf("default titles wrong")
	}
	if TitleFor(domain.ListOwned, " Mine ") != "Mine" {
		t.Fatalf("custom title not used")
	}
}
