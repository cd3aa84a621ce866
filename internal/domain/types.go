/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Core data model shared by the catalog loader, filter engine, layout planner,
// renderer and session controller.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Item is one catalog record. All fields are display strings; Price is never
// parsed as a number.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"nameKo"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	Country   string `json:"country"`
	Character string `json:"character"`
	Company   string `json:"company"`
	Group     string `json:"group"`
	SubGroup  string `json:"subGroup,omitempty"`
}

// Catalog is the ordered set of items loaded for the current session.
type Catalog struct {
	Items  []Item
	Format string // table format the items were decoded from, when known
	index  map[string]int
}

// NewCatalog builds a catalog, dropping records without an id and later
// duplicates of an id already seen. The second return value counts dropped rows.
func NewCatalog(items []Item) (*Catalog, int) {
	c := &Catalog{Items: make([]Item, 0, len(items)), index: make(map[string]int, len(items))}
	dropped := 0
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			dropped++
			continue
		}
		if _, dup := c.index[it.ID]; dup {
			dropped++
			continue
		}
		c.index[it.ID] = len(c.Items)
		c.Items = append(c.Items, it)
	}
	return c, dropped
}

// ByID looks an item up by identifier.
func (c *Catalog) ByID(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}

// Len returns the number of items; nil catalogs are empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// ListKind names one of the two selection lists.
type ListKind string

const (
	ListOwned  ListKind = "owned"
	ListWished ListKind = "wished"
)

// ErrUnknownList is returned for list names other than owned/wished.
var ErrUnknownList = errors.New("unknown list kind")

// ListKinds enumerates the supported lists in display order.
func ListKinds() []ListKind { return []ListKind{ListOwned, ListWished} }

// ParseListKind accepts "owned", "wished" and the legacy "wish" alias.
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owned":
		return ListOwned, nil
	case "wished", "wish":
		return ListWished, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownList, s)
}

// DisplayMode selects card or circle rendering.
type DisplayMode string

const (
	ModeNormal  DisplayMode = "normal"
	ModeCompact DisplayMode = "compact"
)

// ColumnPolicy selects how the column count is derived from the item count.
type ColumnPolicy string

const (
	// ColumnsFixed caps the grid at four columns.
	ColumnsFixed ColumnPolicy = "fixed"
	// ColumnsSqrt uses round(sqrt(n)) clamped to [3, 8].
	ColumnsSqrt ColumnPolicy = "sqrt"
)

// ExportScope selects which selected items an export includes.
type ExportScope string

const (
	ScopeAll      ExportScope = "all"
	ScopeFiltered ExportScope = "filtered"
)

// Format is the encoded output format of a collage.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// Ext returns the filename extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPDF:
		return "pdf"
	default:
		return "png"
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// ParseFormat maps user input to a Format, defaulting to PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "pdf":
		return FormatPDF
	default:
		return FormatPNG
	}
}

// RenderOptions are the export trigger options supplied by the UI.
type RenderOptions struct {
	ShowName     bool         `json:"showName"`
	ShowPrice    bool         `json:"showPrice"`
	ShowTitle    bool         `json:"showTitle"`
	Title        string       `json:"title,omitempty"`
	ShowNickname bool         `json:"showNickname"`
	Nickname     string       `json:"nickname,omitempty"`
	Mode         DisplayMode  `json:"mode,omitempty"`
	Columns      ColumnPolicy `json:"columns,omitempty"`
	Scope        ExportScope  `json:"scope,omitempty"`
	Format       Format       `json:"format,omitempty"`
}

// DefaultRenderOptions mirrors the export dialog defaults: name, price and
// title shown, normal cards, fixed-cap columns, PNG.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ShowName:  true,
		ShowPrice: true,
		ShowTitle: true,
		Mode:      ModeNormal,
		Columns:   ColumnsFixed,
		Scope:     ScopeAll,
		Format:    FormatPNG,
	}
}

// NicknameLine returns the trimmed nickname when it should be drawn.
func (o RenderOptions) NicknameLine() string {
	if !o.ShowNickname {
		return ""
	}
	return strings.TrimSpace(o.Nickname)
}

// Color is an 8-bit RGBA color used by palettes.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
	A uint8 `json:"a" yaml:"a"`
}

// Hex parses "#rrggbb" or "#rrggbbaa"; invalid input yields opaque black.
func Hex(s string) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{A: 255}
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{A: 255}
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
}
