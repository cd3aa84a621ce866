/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded per-list undo/redo stacks of selection contents.
package undo

import (
	"sync"
	"time"

	"gocollector/internal/domain"
)

// Snapshot is the full id set of one list at a point in time.
type Snapshot struct {
	List domain.ListKind
	IDs  []string
	TS   time.Time
}

// Config controls depth caps and coalescing.
type Config struct {
	// MaxIDs is a soft cap on ids held across all stacks; oldest entries go first.
	MaxIDs int
	// MaxPerList limits snapshots per list (0 means unlimited).
	MaxPerList int
	// MinInterval replaces the previous snapshot of a list when a new one
	// arrives within the interval. Zero disables coalescing.
	MinInterval time.Duration
}

// History is safe for concurrent use.
type History struct {
	cfg   Config
	mu    sync.Mutex
	undo  map[domain.ListKind][]Snapshot
	redo  map[domain.ListKind][]Snapshot
	total int
}

func NewHistory(cfg Config) *History {
	if cfg.MaxIDs <= 0 {
		cfg.MaxIDs = 100_000
	}
	return &History{cfg: cfg, undo: make(map[domain.ListKind][]Snapshot), redo: make(map[domain.ListKind][]Snapshot)}
}

func clone(ids []string) []string { return append([]string(nil), ids...) }

// Record stores the contents a list had before a change. Any new change
// invalidates redo for the list.
func (h *History) Record(list domain.ListKind, before []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Snapshot{List: list, IDs: clone(before), TS: time.Now()}
	h.dropRedoLocked(list)
	stack := h.undo[list]
	if n := len(stack); n > 0 && h.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < h.cfg.MinInterval {
		// keep the older state; the newer change is folded into it
		stack[n-1].TS = s.TS
		return
	}
	h.undo[list] = append(stack, s)
	h.total += len(s.IDs)
	h.enforceCapsLocked(list)
}

// Undo returns the state to restore for list and remembers current for Redo.
func (h *History) Undo(list domain.ListKind, current []string) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := h.undo[list]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	h.undo[list] = stack[:len(stack)-1]
	h.total -= len(s.IDs)
	h.redo[list] = append(h.redo[list], Snapshot{List: list, IDs: clone(current), TS: time.Now()})
	h.total += len(current)
	return s, true
}

// Redo reverses the last Undo of list.
func (h *History) Redo(list domain.ListKind, current []string) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.redo[list]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	h.redo[list] = r[:len(r)-1]
	h.total -= len(s.IDs)
	h.undo[list] = append(h.undo[list], Snapshot{List: list, IDs: clone(current), TS: time.Now()})
	h.total += len(current)
	h.enforceCapsLocked(list)
	return s, true
}

// Depth returns the number of undo and redo steps available for list.
func (h *History) Depth(list domain.ListKind) (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo[list]), len(h.redo[list])
}

func (h *History) dropRedoLocked(list domain.ListKind) {
	for _, s := range h.redo[list] {
		h.total -= len(s.IDs)
	}
	delete(h.redo, list)
}

func (h *History) enforceCapsLocked(list domain.ListKind) {
	if h.cfg.MaxPerList > 0 {
		stack := h.undo[list]
		if extra := len(stack) - h.cfg.MaxPerList; extra > 0 {
			for _, s := range stack[:extra] {
				h.total -= len(s.IDs)
			}
			h.undo[list] = append([]Snapshot{}, stack[extra:]...)
		}
	}
	// global cap: prune the oldest undo entry across lists
	for h.total > h.cfg.MaxIDs {
		var oldest domain.ListKind
		found := false
		var oldestTS time.Time
		for l, stack := range h.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = l, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := h.undo[oldest]
		h.total -= len(stack[0].IDs)
		h.undo[oldest] = stack[1:]
	}
}
