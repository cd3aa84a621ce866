/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout computes collage geometry from an item count and render
// options. It performs no I/O and allocates no pixels.
package layout

import (
	"errors"
	"math"
	"strings"

	"gocollector/internal/domain"
)

// ErrNoItems is returned when asked to plan a collage for zero items.
var ErrNoItems = errors.New("layout: no items to place")

// Canvas constants in pixels.
const (
	Padding = 60
	Gap     = 30

	TitleSlot    = 140
	NicknameSlot = 60

	NormalCardW  = 300
	NormalImageH = 320
	NameSlot     = 70
	PriceSlot    = 30
	CompactCard  = 240

	FixedMaxColumns = 4
	SqrtMinColumns  = 3
	SqrtMaxColumns  = 8
)

// Card interior geometry for normal mode, relative to the card origin.
const (
	ImageBoxX = 20
	ImageBoxY = 30
	ImageBoxW = 260
	ImageBoxH = 260

	NameBaseline        = 320
	PriceBaseline       = 395
	PriceBaselineNoName = 340
	TextWidth           = 260
)

// Options are the plan inputs taken from domain.RenderOptions.
type Options struct {
	Mode         domain.DisplayMode
	Columns      domain.ColumnPolicy
	ShowName     bool
	ShowPrice    bool
	ShowTitle    bool
	ShowNickname bool
	Nickname     string
}

// FromRender extracts the layout relevant fields.
func FromRender(o domain.RenderOptions) Options {
	return Options{
		Mode:         o.Mode,
		Columns:      o.Columns,
		ShowName:     o.ShowName,
		ShowPrice:    o.ShowPrice,
		ShowTitle:    o.ShowTitle,
		ShowNickname: o.ShowNickname,
		Nickname:     o.Nickname,
	}
}

func (o Options) nicknameSlot() bool {
	return o.ShowNickname && strings.TrimSpace(o.Nickname) != ""
}

// Plan is the derived geometry of one collage.
type Plan struct {
	Count   int                `json:"count"`
	Columns int                `json:"columns"`
	Rows    int                `json:"rows"`
	CardW   int                `json:"cardW"`
	CardH   int                `json:"cardH"`
	Gap     int                `json:"gap"`
	Padding int                `json:"padding"`
	HeaderH int                `json:"headerH"`
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Mode    domain.DisplayMode `json:"mode"`

	titleSlot    bool
	nicknameSlot bool
}

// Columns applies the column policy to n items.
func Columns(n int, policy domain.ColumnPolicy) int {
	if n <= 0 {
		return 0
	}
	switch policy {
	case domain.ColumnsSqrt:
		if n < SqrtMinColumns {
			return n
		}
		c := int(math.Round(math.Sqrt(float64(n))))
		if c < SqrtMinColumns {
			c = SqrtMinColumns
		}
		if c > SqrtMaxColumns {
			c = SqrtMaxColumns
		}
		return c
	default:
		if n < FixedMaxColumns {
			return n
		}
		return FixedMaxColumns
	}
}

// CardSize returns the card dimensions for the mode and text options.
func CardSize(o Options) (w, h int) {
	if o.Mode == domain.ModeCompact {
		return CompactCard, CompactCard
	}
	h = NormalImageH
	if o.ShowName {
		h += NameSlot
	}
	if o.ShowPrice {
		h += PriceSlot
	}
	return NormalCardW, h
}

// HeaderHeight returns the space above the first card row.
func HeaderHeight(o Options) int {
	h := Padding
	if o.ShowTitle {
		h += TitleSlot
	}
	if o.nicknameSlot() {
		h += NicknameSlot
	}
	return h
}

// New plans a collage for n items.
func New(n int, o Options) (Plan, error) {
	if n <= 0 {
		return Plan{}, ErrNoItems
	}
	cols := Columns(n, o.Columns)
	rows := (n + cols - 1) / cols
	cw, ch := CardSize(o)
	mode := o.Mode
	if mode == "" {
		mode = domain.ModeNormal
	}
	p := Plan{
		Count:        n,
		Columns:      cols,
		Rows:         rows,
		CardW:        cw,
		CardH:        ch,
		Gap:          Gap,
		Padding:      Padding,
		HeaderH:      HeaderHeight(o),
		Mode:         mode,
		titleSlot:    o.ShowTitle,
		nicknameSlot: o.nicknameSlot(),
	}
	p.Width = 2*Padding + cols*cw + (cols-1)*Gap
	p.Height = p.HeaderH + rows*ch + (rows-1)*Gap + Padding
	return p, nil
}

// Origin returns the top-left corner of card i.
func (p Plan) Origin(i int) (x, y int) {
	if p.Columns == 0 {
		return 0, 0
	}
	x = p.Padding + (i%p.Columns)*(p.CardW+p.Gap)
	y = p.HeaderH + (i/p.Columns)*(p.CardH+p.Gap)
	return x, y
}

// HasTitle reports whether a title slot is reserved.
func (p Plan) HasTitle() bool { return p.titleSlot }

// HasNickname reports whether a nickname slot is reserved.
func (p Plan) HasNickname() bool { return p.nicknameSlot }

// TitleCenterY is the vertical center of the title slot.
func (p Plan) TitleCenterY() int { return p.Padding/2 + TitleSlot/2 }

// NicknameCenterY is the vertical center of the nickname slot, following the
// title slot when one is reserved.
func (p Plan) NicknameCenterY() int {
	y := p.Padding / 2
	if p.titleSlot {
		y += TitleSlot
	}
	return y + NicknameSlot/2
}

// PriceBaselineY returns the price baseline inside a normal card.
func PriceBaselineY(showName bool) int {
	if showName {
		return PriceBaseline
	}
	return PriceBaselineNoName
}
