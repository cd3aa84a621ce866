/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores loaded OpenType fonts mapped by family/weight and caches
// the faces created from them. It is safe for concurrent use.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
	faces map[faceKey]font.Face
}

type fontKey struct {
	family string
	bold   bool
}

type faceKey struct {
	font *opentype.Font
	size float32
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[fontKey]*opentype.Font), faces: make(map[faceKey]font.Face)}
}

// LoadBytes parses TrueType or OpenType data and registers it.
func (fl *FontLibrary) LoadBytes(family string, weight int, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, bold: weight >= 600}] = f
	return nil
}

// Has reports whether any weight of family is registered.
func (fl *FontLibrary) Has(family string) bool {
	return fl.find(FontSpec{Family: family}) != nil
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[fontKey{family: spec.Family, bold: spec.Bold()}]; ok {
		return f
	}
	// same family, other weight
	if f, ok := fl.fonts[fontKey{family: spec.Family, bold: !spec.Bold()}]; ok {
		return f
	}
	return nil
}

func (fl *FontLibrary) face(f *opentype.Font, size float32, dpi float64) (font.Face, error) {
	k := faceKey{font: f, size: size}
	fl.mu.RLock()
	face, ok := fl.faces[k]
	fl.mu.RUnlock()
	if ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(size), DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	fl.mu.Lock()
	if fl.faces == nil {
		fl.faces = make(map[faceKey]font.Face)
	}
	fl.faces[k] = face
	fl.mu.Unlock()
	return face, nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another
// Provider, by default the embedded Go fonts. Sizes are pixels at 72 DPI.
type OTProvider struct {
	Lib      *FontLibrary
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePx <= 0 {
		spec.SizePx = 12
	}
	if f := p.Lib.find(spec); f != nil {
		if face, err := p.Lib.face(f, spec.SizePx, 72); err == nil {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = GoProvider()
	}
	return fb.Resolve(spec)
}

var (
	goOnce sync.Once
	goLib  *FontLibrary
)

const goFamily = "Go"

// GoProvider resolves every spec to the embedded Go Regular or Go Bold faces.
func GoProvider() Provider {
	goOnce.Do(func() {
		goLib = NewFontLibrary()
		// embedded fonts always parse
		_ = goLib.LoadBytes(goFamily, 400, goregular.TTF)
		_ = goLib.LoadBytes(goFamily, 700, gobold.TTF)
	})
	return goProvider{}
}

type goProvider struct{}

func (goProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	spec.Family = goFamily
	if spec.SizePx <= 0 {
		spec.SizePx = 12
	}
	if f := goLib.find(spec); f != nil {
		if face, err := goLib.face(f, spec.SizePx, 72); err == nil {
			return face, metricsOf(face)
		}
	}
	return BasicProvider{}.Resolve(spec)
}
