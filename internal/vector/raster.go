/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"image"
	"image/draw"

	xvector "golang.org/x/image/vector"
)

// Mask rasterizes p into an alpha image of size w x h. Path coordinates are
// taken relative to the mask origin. Degenerate paths yield an empty mask.
func Mask(p Path, w, h int) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	if b := p.Bounds(); w <= 0 || h <= 0 || b.W <= 0 || b.H <= 0 {
		return dst
	}
	z := xvector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			z.MoveTo(d[0], d[1])
		case LineTo:
			z.LineTo(d[0], d[1])
		case QuadTo:
			z.QuadTo(d[0], d[1], d[2], d[3])
		case CubicTo:
			z.CubeTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case Close:
			z.ClosePath()
		}
	}
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// Ring returns outer minus inner as a new mask. Both masks must share bounds.
func Ring(outer, inner *image.Alpha) *image.Alpha {
	out := image.NewAlpha(outer.Bounds())
	for i := range outer.Pix {
		o, in := int(outer.Pix[i]), 0
		if i < len(inner.Pix) {
			in = int(inner.Pix[i])
		}
		v := o - in
		if v < 0 {
			v = 0
		}
		out.Pix[i] = uint8(v)
	}
	return out
}

// Stroke approximates an inside-centred stroke of width around the card
// outline: the shape grown by width/2 minus the shape shrunk by width/2.
// The returned mask is offset by pad on both axes so the outer half fits.
func Stroke(w, h, radius, width float32, circle bool, pad int) *image.Alpha {
	half := width / 2
	fp := float32(pad)
	mw, mh := int(w)+2*pad, int(h)+2*pad
	card := R(0, 0, w, h)
	var outer, inner Path
	if circle {
		c, d := card.Center(), minf(w, h)
		outer = Circle(c.X, c.Y, d/2+half)
		inner = Circle(c.X, c.Y, d/2-half)
	} else {
		outer = RoundedRect(card.Inset(-half, -half), radius+half)
		inner = RoundedRect(card.Inset(half, half), radius-half)
	}
	return Ring(Mask(outer.Translate(fp, fp), mw, mh), Mask(inner.Translate(fp, fp), mw, mh))
}
