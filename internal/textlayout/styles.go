/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "gocollector/internal/domain"

// TextStyle is a text preset on the collage: font, color and line height.
type TextStyle struct {
	Name       string
	Font       FontSpec
	Color      domain.Color
	LineHeight float32 // px between baselines; 0 uses the face metrics
}

// Collage text roles.
const (
	StyleTitle    = "Title"
	StyleNickname = "Nickname"
	StyleName     = "Name"
	StylePrice    = "Price"
)

// DisplayFamily is the family registered for the downloaded display font.
const DisplayFamily = "Jua"

// BodyFamily is the family used for card text.
const BodyFamily = "Gowun Dodum"

var builtinStyles = map[string]TextStyle{
	StyleTitle: {
		Name:  StyleTitle,
		Font:  FontSpec{Family: DisplayFamily, SizePx: 70, Weight: 700},
		Color: domain.Hex("#aeb4d1"),
	},
	StyleNickname: {
		Name:  StyleNickname,
		Font:  FontSpec{Family: DisplayFamily, SizePx: 32, Weight: 400},
		Color: domain.Hex("#aeb4d1"),
	},
	StyleName: {
		Name:       StyleName,
		Font:       FontSpec{Family: BodyFamily, SizePx: 22, Weight: 700},
		Color:      domain.Hex("#2d3436"),
		LineHeight: 28,
	},
	StylePrice: {
		Name:  StylePrice,
		Font:  FontSpec{Family: BodyFamily, SizePx: 18, Weight: 700},
		Color: domain.Hex("#a4b0be"),
	},
}

// MustStyle returns a builtin style, or the Name style for unknown names.
func MustStyle(name string) TextStyle {
	if s, ok := builtinStyles[name]; ok {
		return s
	}
	return builtinStyles[StyleName]
}
