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
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"gocollector/internal/vector"
)

func trimmed(s string) string { return strings.TrimSpace(s) }

// fillMask paints c through mask placed at p.
func fillMask(dst draw.Image, mask *image.Alpha, p image.Point, c color.Color) {
	r := mask.Bounds().Add(p)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// drawShadow paints a blurred copy of mask offset by dy below the shape at p.
func drawShadow(dst draw.Image, mask *image.Alpha, p image.Point, dy int, sigma float64, c color.Color) {
	pad := int(3*sigma + 1)
	b := mask.Bounds()
	layer := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	draw.DrawMask(layer, b.Add(image.Pt(pad, pad)), image.NewUniform(c), image.Point{}, mask, b.Min, draw.Src)
	blurred := imaging.Blur(layer, sigma)
	at := image.Pt(p.X-pad, p.Y-pad+dy)
	draw.Draw(dst, blurred.Bounds().Add(at), blurred, image.Point{}, draw.Over)
}

// drawClipped places src at r (card-local) and composites it through the card
// mask onto dst at origin p.
func drawClipped(dst draw.Image, src image.Image, r image.Rectangle, mask *image.Alpha, p image.Point) {
	layer := image.NewRGBA(mask.Bounds())
	draw.Draw(layer, r, src, src.Bounds().Min, draw.Over)
	draw.DrawMask(dst, mask.Bounds().Add(p), layer, image.Point{}, mask, image.Point{}, draw.Over)
}

// clipCanvas keeps only the pixels of img covered by a rounded rectangle of
// the given radius; corners become transparent.
func clipCanvas(img *image.RGBA, radius float32) *image.RGBA {
	b := img.Bounds()
	path := vector.RoundedRect(vector.R(0, 0, float32(b.Dx()), float32(b.Dy())), radius)
	mask := vector.Mask(path, b.Dx(), b.Dy())
	out := image.NewRGBA(b)
	draw.DrawMask(out, b, img, b.Min, mask, image.Point{}, draw.Src)
	return out
}

// drawCentered draws s horizontally centered on cx with its baseline at y.
func drawCentered(dst draw.Image, face font.Face, s string, cx, y int, c color.Color) {
	if s == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - w/2, Y: fixed.I(y)}
	d.DrawString(s)
}

// drawMiddle draws s centered on (cx, cy), vertically centering the glyph box.
func drawMiddle(dst draw.Image, face font.Face, s string, cx, cy int, c color.Color) {
	m := face.Metrics()
	baseline := cy + (m.Ascent.Round()-m.Descent.Round())/2
	drawCentered(dst, face, s, cx, baseline, c)
}
