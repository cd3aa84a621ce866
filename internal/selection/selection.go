/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection keeps the per-list sets of marked item ids and mirrors
// every change into durable storage before reporting success.
package selection

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocollector/internal/domain"
	applog "gocollector/internal/log"
	"gocollector/internal/storage"
)

// DefaultPrefix namespaces the stored lists.
const DefaultPrefix = "nongdam_"

// legacyNames are list names used by earlier releases; read when the
// current key is absent.
var legacyNames = map[domain.ListKind]string{domain.ListWished: "wish"}

// ErrEmptyID rejects toggling a blank id.
var ErrEmptyID = errors.New("selection: empty item id")

//go:embed selection.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Decode validates a stored payload and returns its ids. Invalid payloads are
// reported as errors; callers treat them as an empty list.
func Decode(data []byte) ([]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("selection payload invalid: %s", strings.Join(msgs, "; "))
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return ids, nil
}

// Encode renders ids as a sorted JSON array.
func Encode(ids []string) ([]byte, error) {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return json.Marshal(out)
}

// Store holds one id set per list kind.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	prefix string
	sets   map[domain.ListKind]map[string]struct{}
	log    *slog.Logger
}

// Open creates a store backed by kv and loads both lists. Loading never fails:
// a missing, unreadable or malformed entry yields an empty list and a warning.
func Open(ctx context.Context, kv storage.KV, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{
		kv:     kv,
		prefix: prefix,
		sets:   make(map[domain.ListKind]map[string]struct{}),
		log:    applog.WithComponent("selection"),
	}
	for _, k := range domain.ListKinds() {
		s.sets[k] = s.load(ctx, k)
	}
	return s
}

// Key returns the storage key for a list.
func (s *Store) Key(list domain.ListKind) string { return s.prefix + string(list) }

func (s *Store) load(ctx context.Context, list domain.ListKind) map[string]struct{} {
	set := make(map[string]struct{})
	if s.kv == nil {
		return set
	}
	l := applog.WithOperation(s.log, "load").With(slog.String("list", string(list)))
	raw, ok, err := s.kv.Get(ctx, s.Key(list))
	if err == nil && !ok {
		if legacy, has := legacyNames[list]; has {
			raw, ok, err = s.kv.Get(ctx, s.prefix+legacy)
		}
	}
	if err != nil {
		l.Warn("read failed, starting empty", slog.Any("err", err))
		return set
	}
	if !ok {
		return set
	}
	ids, err := Decode(raw)
	if err != nil {
		l.Warn("stored list unusable, starting empty", slog.Any("err", err))
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	l.Debug("list loaded", slog.Int("count", len(set)))
	return set
}

func (s *Store) set(list domain.ListKind) (map[string]struct{}, error) {
	set, ok := s.sets[list]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownList, list)
	}
	return set, nil
}

// persist writes the list; the caller holds the write lock.
func (s *Store) persist(ctx context.Context, list domain.ListKind, set map[string]struct{}) error {
	if s.kv == nil {
		return nil
	}
	data, err := Encode(keys(set))
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, s.Key(list), data); err != nil {
		return fmt.Errorf("persist %s: %w", list, err)
	}
	return nil
}

// Toggle flips membership of id and persists the list before returning.
// It reports whether id is marked afterwards. When persisting fails the flip
// is undone and the error returned.
func (s *Store) Toggle(ctx context.Context, list domain.ListKind, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.set(list)
	if err != nil {
		return false, err
	}
	_, had := set[id]
	if had {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
	if err := s.persist(ctx, list, set); err != nil {
		if had {
			set[id] = struct{}{}
		} else {
			delete(set, id)
		}
		s.log.Error("toggle not persisted", slog.String("list", string(list)), slog.String("id", id), slog.Any("err", err))
		return had, err
	}
	return !had, nil
}

// Clear empties a list. On a persist failure the previous contents stay.
func (s *Store) Clear(ctx context.Context, list domain.ListKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.set(list); err != nil {
		return err
	}
	empty := make(map[string]struct{})
	if err := s.persist(ctx, list, empty); err != nil {
		return err
	}
	s.sets[list] = empty
	return nil
}

// Replace sets the contents of list to ids and persists them. On a persist
// failure the previous contents stay.
func (s *Store) Replace(ctx context.Context, list domain.ListKind, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.set(list); err != nil {
		return err
	}
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			next[id] = struct{}{}
		}
	}
	if err := s.persist(ctx, list, next); err != nil {
		return err
	}
	s.sets[list] = next
	return nil
}

// Has reports whether id is marked in list.
func (s *Store) Has(list domain.ListKind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[list][id]
	return ok
}

// IDs returns the marked ids of list in sorted order.
func (s *Store) IDs(list domain.ListKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.sets[list])
}

// Count returns the number of marked ids in list.
func (s *Store) Count(list domain.ListKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[list])
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
