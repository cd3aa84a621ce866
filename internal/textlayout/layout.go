/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Abstractions for text measurement and line breaking on the collage.
// All measurement goes through Provider so tests can use a fixed-width face.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePx float32
	Weight int // 100..900; 600 and above render bold
}

// Bold reports whether the spec asks for a bold face.
func (s FontSpec) Bold() bool { return s.Weight >= 600 }

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float32
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines      []Line
	Width      float32
	Height     float32
	LineHeight float32
	Metrics    Metrics
	Face       font.Face
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Advance returns the pixel width of s in face.
func Advance(face font.Face, s string) float32 {
	return float32(font.MeasureString(face, s)) / 64 // fixed.Int26_6 to px
}

// Wrap breaks text greedily on spaces. A word is appended to the current line
// unless the line would then exceed maxWidth and already holds a word; a single
// word wider than maxWidth gets a line of its own. Blank text yields no lines.
func Wrap(face font.Face, text string, maxWidth float32) []Line {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []Line
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if maxWidth > 0 && Advance(face, candidate) > maxWidth {
			lines = append(lines, Line{Text: cur, Width: Advance(face, cur)})
			cur = w
			continue
		}
		cur = candidate
	}
	return append(lines, Line{Text: cur, Width: Advance(face, cur)})
}

// WordWrapLayouter lays out a text block with a fixed line height. It does not
// perform shaping or hyphenation.
type WordWrapLayouter struct{ Provider Provider }

// NewWordWrap returns a layouter resolving faces through provider.
func NewWordWrap(provider Provider) *WordWrapLayouter {
	return &WordWrapLayouter{Provider: provider}
}

// Layout wraps text to maxWidth. lineHeight <= 0 uses the face metrics.
func (l *WordWrapLayouter) Layout(text string, spec FontSpec, maxWidth, lineHeight float32) TextBox {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	face, met := l.Provider.Resolve(spec)
	if lineHeight <= 0 {
		lineHeight = met.Ascent + met.Descent + met.LineGap
	}
	box := TextBox{Metrics: met, Face: face, LineHeight: lineHeight, Lines: Wrap(face, text, maxWidth)}
	for _, ln := range box.Lines {
		if ln.Width > box.Width {
			box.Width = ln.Width
		}
	}
	box.Height = float32(len(box.Lines)) * lineHeight
	return box
}
