/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and the two card shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float32 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float32{x, y}})
}
func (p *Path) LineTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float32{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float32{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float32{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Translate returns a copy of p moved by dx,dy.
func (p Path) Translate(dx, dy float32) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		n := pointsOf(c.Op)
		for j := 0; j < n; j++ {
			c.Data[2*j] += dx
			c.Data[2*j+1] += dy
		}
		out.Cmds[i] = c
	}
	return out
}

func pointsOf(op PathOp) int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Bounds returns the bounding box of all points and control points.
func (p *Path) Bounds() Rect {
	minX, minY := float32(+1e9), float32(+1e9)
	maxX, maxY := float32(-1e9), float32(-1e9)
	for _, c := range p.Cmds {
		for j := 0; j < pointsOf(c.Op); j++ {
			x, y := c.Data[2*j], c.Data[2*j+1]
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RoundedRect builds a rectangle with quadratic corners. The radius is
// clamped to half the shorter side.
func RoundedRect(r Rect, radius float32) Path {
	if radius < 0 {
		radius = 0
	}
	radius = minf(radius, minf(r.W, r.H)/2)
	x, y, w, h := r.X, r.Y, r.W, r.H
	var p Path
	p.MoveTo(x+radius, y)
	p.LineTo(x+w-radius, y)
	p.QuadTo(x+w, y, x+w, y+radius)
	p.LineTo(x+w, y+h-radius)
	p.QuadTo(x+w, y+h, x+w-radius, y+h)
	p.LineTo(x+radius, y+h)
	p.QuadTo(x, y+h, x, y+h-radius)
	p.LineTo(x, y+radius)
	p.QuadTo(x, y, x+radius, y)
	p.Close()
	return p
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Circle builds a circle from four cubic segments.
func Circle(cx, cy, radius float32) Path {
	k := radius * kappa
	var p Path
	p.MoveTo(cx+radius, cy)
	p.CubicTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
	p.CubicTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
	p.CubicTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
	p.CubicTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	p.Close()
	return p
}

// CardShape returns the card outline in card-local coordinates: a rounded
// rectangle, or the inscribed circle when circle is set.
func CardShape(w, h, radius float32, circle bool) Path {
	if circle {
		d := minf(w, h)
		return Circle(w/2, h/2, d/2)
	}
	return RoundedRect(R(0, 0, w, h), radius)
}
