/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"testing"
)

func TestContainSize(t *testing.T) {
	cases := []struct{ sw, sh, mw, mh, ww, wh int }{
		{400, 200, 260, 260, 260, 130},
		{200, 400, 260, 260, 130, 260},
		{50, 50, 260, 260, 260, 260},
		{0, 10, 260, 260, 260, 260},
	}
	for _, c := range cases {
		w, h := ContainSize(c.sw, c.sh, c.mw, c.mh)
		if w != c.ww || h != c.wh {
			t.Fatalf("ContainSize(%d,%d) = %dx%d, want %dx%d", c.sw, c.sh, w, h, c.ww, c.wh)
		}
	}
}

func TestCoverSize(t *testing.T) {
	w, h := CoverSize(400, 200, 240, 240)
	if w != 480 || h != 240 {
		t.Fatalf("CoverSize wide = %dx%d", w, h)
	}
	w, h = CoverSize(100, 300, 240, 240)
	if w != 240 || h != 720 {
		t.Fatalf("CoverSize tall = %dx%d", w, h)
	}
}

func TestFitContain_CentersInBox(t *testing.T) {
	src := solid(400, 200, color.RGBA{R: 255, A: 255})
	scaled, r := fitContain(src, image.Rect(20, 30, 280, 290))
	if r != image.Rect(20, 95, 280, 225) {
		t.Fatalf("placement = %v", r)
	}
	if scaled.Bounds().Dx() != 260 || scaled.Bounds().Dy() != 130 {
		t.Fatalf("scaled size = %v", scaled.Bounds())
	}
}

func TestFitCover_FillsBox(t *testing.T) {
	src := solid(400, 200, color.RGBA{G: 255, A: 255})
	scaled, r := fitCover(src, image.Rect(0, 0, 240, 240))
	if r.Dx() != 240 || scaled.Bounds().Dx() != 240 || scaled.Bounds().Dy() != 240 {
		t.Fatalf("cover result = %v / %v", r, scaled.Bounds())
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
