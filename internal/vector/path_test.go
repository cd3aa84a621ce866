/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRoundedRect_Bounds(t *testing.T) {
	p := RoundedRect(R(1, 2, 100, 50), 10)
	b := p.Bounds()
	if b.X != 1 || b.Y != 2 || b.W != 100 || b.H != 50 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestRoundedRect_ClampsRadius(t *testing.T) {
	p := RoundedRect(R(0, 0, 40, 20), 100)
	// first point sits radius away from the left edge; clamped radius is 10
	if got := p.Cmds[0].Data[0]; got != 10 {
		t.Fatalf("radius not clamped, start x = %v", got)
	}
}

func TestCircle_Bounds(t *testing.T) {
	p := Circle(50, 50, 20)
	b := p.Bounds()
	if b.X != 30 || b.Y != 30 || b.W != 40 || b.H != 40 {
		t.Fatalf("unexpected circle bounds: %+v", b)
	}
	if len(p.Cmds) != 6 {
		t.Fatalf("expected move, four cubics and close, got %d cmds", len(p.Cmds))
	}
}

func TestPath_Translate(t *testing.T) {
	p := RoundedRect(R(0, 0, 10, 10), 2).Translate(5, 7)
	b := p.Bounds()
	if b.X != 5 || b.Y != 7 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected translated bounds: %+v", b)
	}
}

func TestRect_Helpers(t *testing.T) {
	r := R(10, 10, 20, 40)
	if c := r.Center(); c.X != 20 || c.Y != 30 {
		t.Fatalf("center = %+v", c)
	}
	in := r.Inset(2, 3)
	if in.X != 12 || in.W != 16 || in.H != 34 {
		t.Fatalf("inset = %+v", in)
	}
}
