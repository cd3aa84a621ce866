/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"testing"
)

func TestNewCatalogDropsMissingAndDuplicateIDs(t *testing.T) {
	c, dropped := NewCatalog([]Item{
		{ID: "A", Name: "first"},
		{ID: "", Name: "no id"},
		{ID: " B ", Name: "spaced"},
		{ID: "A", Name: "dup"},
	})
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if it, ok := c.ByID("A"); !ok || it.Name != "first" {
		t.Fatalf("first occurrence should win, got %+v", it)
	}
	if _, ok := c.ByID("B"); !ok {
		t.Fatalf("id should be trimmed")
	}
	var nilCat *Catalog
	if _, ok := nilCat.ByID("A"); ok || nilCat.Len() != 0 {
		t.Fatalf("nil catalog should be empty")
	}
}

func TestParseListKind(t *testing.T) {
	for in, want := range map[string]ListKind{"owned": ListOwned, "Wished": ListWished, "wish": ListWished} {
		got, err := ParseListKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseListKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseListKind("trade"); !errors.Is(err, ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestFormatHelpers(t *testing.T) {
	if ParseFormat("JPG") != FormatJPEG || ParseFormat("pdf") != FormatPDF || ParseFormat("") != FormatPNG {
		t.Fatalf("ParseFormat mapping wrong")
	}
	if FormatJPEG.Ext() != "jpg" || FormatPNG.ContentType() != "image/png" {
		t.Fatalf("format helpers wrong")
	}
}

func TestNicknameLine(t *testing.T) {
	o := RenderOptions{ShowNickname: true, Nickname: "  bear  "}
	if o.NicknameLine() != "bear" {
		t.Fatalf("nickname should be trimmed: %q", o.NicknameLine())
	}
	o.ShowNickname = false
	if o.NicknameLine() != "" {
		t.Fatalf("disabled nickname should be empty")
	}
}

func TestHex(t *testing.T) {
	if c := Hex("#fdfbf7"); c != (Color{R: 0xfd, G: 0xfb, B: 0xf7, A: 0xff}) {
		t.Fatalf("Hex mismatch: %+v", c)
	}
	if c := Hex("0000001a"); c.A != 0x1a {
		t.Fatalf("alpha not parsed: %+v", c)
	}
}
