/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestMask_RoundedCornersAreTransparent(t *testing.T) {
	m := Mask(CardShape(100, 100, 20, false), 100, 100)
	if a := m.AlphaAt(0, 0).A; a != 0 {
		t.Fatalf("corner alpha = %d, want 0", a)
	}
	if a := m.AlphaAt(50, 50).A; a != 255 {
		t.Fatalf("center alpha = %d, want 255", a)
	}
	if a := m.AlphaAt(50, 1).A; a < 200 {
		t.Fatalf("top edge alpha = %d, expected inside", a)
	}
}

func TestMask_Circle(t *testing.T) {
	m := Mask(CardShape(80, 80, 0, true), 80, 80)
	if m.AlphaAt(2, 2).A != 0 || m.AlphaAt(40, 40).A != 255 {
		t.Fatalf("circle mask wrong")
	}
}

func TestMask_EmptyPath(t *testing.T) {
	var line Path
	line.MoveTo(1, 1)
	line.LineTo(9, 1)
	line.Close()
	for _, p := range []Path{{}, line} {
		m := Mask(p, 10, 10)
		for _, v := range m.Pix {
			if v != 0 {
				t.Fatalf("degenerate path must rasterize to nothing: %+v", p.Cmds)
			}
		}
	}
}

func TestStroke_OnlyCoversOutline(t *testing.T) {
	pad := 4
	m := Stroke(100, 100, 20, 2, false, pad)
	if m.AlphaAt(pad+50, pad+50).A != 0 {
		t.Fatalf("stroke must not cover the interior")
	}
	if m.AlphaAt(pad+50, pad).A == 0 {
		t.Fatalf("stroke missing on top edge")
	}
}
