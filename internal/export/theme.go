/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"

	"gocollector/internal/domain"
)

// Theme holds the collage colors.
type Theme struct {
	Background domain.Color `yaml:"background" json:"background"`
	Card       domain.Color `yaml:"card" json:"card"`
	Border     domain.Color `yaml:"border" json:"border"`
	Shadow     domain.Color `yaml:"shadow" json:"shadow"`
}

// DefaultTheme returns the cream background with white cards.
func DefaultTheme() Theme {
	return Theme{
		Background: domain.Hex("#fdfbf7"),
		Card:       domain.Hex("#ffffff"),
		Border:     domain.Hex("#eae8e4"),
		Shadow:     domain.Hex("0000001a"),
	}
}

// Geometry of the card decoration in pixels.
const (
	CardRadius   = 20
	CanvasRadius = 40
	BorderWidth  = 2
	ShadowOffset = 5
	ShadowSigma  = 7.5
)

// toNRGBA keeps straight alpha; draw converts to premultiplied when needed.
func toNRGBA(c domain.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Default collage titles per list.
const (
	TitleOwned  = "내 농담곰 컬렉션"
	TitleWished = "농담곰 위시리스트"
)

// TitleFor returns custom when non-blank, else the list's default title.
func TitleFor(list domain.ListKind, custom string) string {
	if t := trimmed(custom); t != "" {
		return t
	}
	if list == domain.ListWished {
		return TitleWished
	}
	return TitleOwned
}
