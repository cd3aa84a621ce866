/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"reflect"
	"testing"
	"time"

	"gocollector/internal/domain"
)

func TestUndoRedoBasic(t *testing.T) {
	h := NewHistory(Config{MaxPerList: 10})
	h.Record(domain.ListOwned, nil)
	h.Record(domain.ListOwned, []string{"a"})
	current := []string{"a", "b"}

	s, ok := h.Undo(domain.ListOwned, current)
	if !ok || !reflect.DeepEqual(s.IDs, []string{"a"}) {
		t.Fatalf("undo = %v %v, want [a]", s.IDs, ok)
	}
	s, ok = h.Undo(domain.ListOwned, s.IDs)
	if !ok || len(s.IDs) != 0 {
		t.Fatalf("second undo = %v %v, want empty", s.IDs, ok)
	}
	if _, ok := h.Undo(domain.ListOwned, nil); ok {
		t.Fatalf("undo past the start should fail")
	}
	s, ok = h.Redo(domain.ListOwned, nil)
	if !ok || !reflect.DeepEqual(s.IDs, []string{"a"}) {
		t.Fatalf("redo = %v %v, want [a]", s.IDs, ok)
	}
	s, ok = h.Redo(domain.ListOwned, s.IDs)
	if !ok || !reflect.DeepEqual(s.IDs, current) {
		t.Fatalf("redo = %v, want %v", s.IDs, current)
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := NewHistory(Config{})
	h.Record(domain.ListWished, nil)
	h.Undo(domain.ListWished, []string{"x"})
	h.Record(domain.ListWished, nil)
	if _, redo := h.Depth(domain.ListWished); redo != 0 {
		t.Fatalf("redo depth = %d after new change", redo)
	}
}

func TestListsAreIndependent(t *testing.T) {
	h := NewHistory(Config{})
	h.Record(domain.ListOwned, []string{"o"})
	if _, ok := h.Undo(domain.ListWished, nil); ok {
		t.Fatalf("wished should have no history")
	}
	if u, r := h.Depth(domain.ListOwned); u != 1 || r != 0 {
		t.Fatalf("owned depth = %d/%d", u, r)
	}
}

func TestCoalesce(t *testing.T) {
	h := NewHistory(Config{MinInterval: time.Hour})
	h.Record(domain.ListOwned, []string{"first"})
	h.Record(domain.ListOwned, []string{"first", "second"})
	if u, _ := h.Depth(domain.ListOwned); u != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", u)
	}
	s, _ := h.Undo(domain.ListOwned, nil)
	if !reflect.DeepEqual(s.IDs, []string{"first"}) {
		t.Fatalf("coalesced snapshot should keep the older state, got %v", s.IDs)
	}
}

func TestCaps(t *testing.T) {
	h := NewHistory(Config{MaxPerList: 2})
	for i := 0; i < 10; i++ {
		h.Record(domain.ListOwned, []string{"x"})
	}
	if u, _ := h.Depth(domain.ListOwned); u != 2 {
		t.Fatalf("expected MaxPerList cap 2, got %d", u)
	}

	g := NewHistory(Config{MaxIDs: 3})
	g.Record(domain.ListOwned, []string{"a", "b"})
	time.Sleep(time.Millisecond)
	g.Record(domain.ListWished, []string{"c", "d"})
	if u, _ := g.Depth(domain.ListOwned); u != 0 {
		t.Fatalf("oldest entry should be pruned across lists, owned depth %d", u)
	}
	if u, _ := g.Depth(domain.ListWished); u != 1 {
		t.Fatalf("wished depth = %d", u)
	}
}
