/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session owns the interactive state of the tracker: the active list,
// the filter criteria, the loaded catalog, both selection lists and the
// export busy flag. Front ends (CLI, HTTP) drive it through commands.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gocollector/internal/catalog"
	"gocollector/internal/config"
	"gocollector/internal/domain"
	"gocollector/internal/export"
	"gocollector/internal/filter"
	"gocollector/internal/layout"
	applog "gocollector/internal/log"
	"gocollector/internal/selection"
	"gocollector/internal/telemetry"
	"gocollector/internal/undo"
)

var (
	ErrBusy            = errors.New("session: export already in progress")
	ErrEmptySelection  = errors.New("session: no items selected")
	ErrUnknownItem     = errors.New("session: item not in catalog")
	ErrUnknownCommand  = errors.New("session: unknown command")
	ErrNothingToUndo   = errors.New("session: nothing to undo")
	ErrNothingToRedo   = errors.New("session: nothing to redo")
	errMissingRenderer = errors.New("session: no renderer configured")
)

// User-facing notices.
const (
	NoticeEmptySelection = "No items selected!"
	NoticeBusy           = "An image is already being generated."
	NoticeNoMatch        = "No items match your filter."
	NoticeRenderPrefix   = "Image Generation Error: "
)

// Busy labels shown while an export runs.
const (
	LabelLoadingFonts = "Loading Fonts..."
	LabelGenerating   = "Generating..."
)

// CatalogSource produces the catalog.
type CatalogSource interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}

// Renderer draws a collage for planned items.
type Renderer interface {
	LoadFonts(ctx context.Context)
	Render(ctx context.Context, items []domain.Item, plan layout.Plan, opts domain.RenderOptions) (*image.RGBA, error)
}

// Options tune presentation and encoding.
type Options struct {
	Policy      string // config.PolicyHide, PolicyLock or PolicyShow
	FilePrefix  string
	JPEGQuality int
	// UndoCoalesce folds changes of one list arriving within the window into
	// a single undo step. Zero records every change.
	UndoCoalesce time.Duration
	Telemetry    *telemetry.Client
}

// State is the navigation state.
type State struct {
	List     domain.ListKind `json:"list"`
	Criteria filter.Criteria `json:"criteria"`
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	state    State
	catalog  *domain.Catalog
	loadErr  string
	store    *selection.Store
	history  *undo.History
	renderer Renderer
	opts     Options
	busy     bool
	label    string
}

// New starts on the owned list with no filters.
func New(store *selection.Store, renderer Renderer, opts Options) *Session {
	if opts.Policy == "" {
		opts.Policy = config.PolicyHide
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = export.DefaultFilePrefix
	}
	return &Session{
		state:    State{List: domain.ListOwned, Criteria: filter.Reset()},
		catalog:  &domain.Catalog{},
		store:    store,
		history:  undo.NewHistory(undo.Config{MaxPerList: 50, MinInterval: opts.UndoCoalesce}),
		renderer: renderer,
		opts:     opts,
	}
}

// LoadCatalog replaces the catalog from src. On failure the session keeps an
// empty catalog and View reports the failure message; the error is returned
// for logging only.
func (s *Session) LoadCatalog(ctx context.Context, src CatalogSource) error {
	cat, err := src.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.catalog = &domain.Catalog{}
		s.loadErr = catalog.FailureMessage(err)
		s.opts.Telemetry.CatalogLoaded("", 0, false)
		return err
	}
	if cat == nil {
		cat = &domain.Catalog{}
	}
	s.catalog = cat
	s.loadErr = ""
	s.opts.Telemetry.CatalogLoaded(cat.Format, cat.Len(), true)
	return nil
}

// State returns a copy of the navigation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// shadowed reports whether a wished item is also owned under a policy that
// keeps it out of exports.
func (s *Session) shadowed(list domain.ListKind, id string) bool {
	return list == domain.ListWished && s.opts.Policy != config.PolicyShow && s.store.Has(domain.ListOwned, id)
}

func (s *Session) setList(list domain.ListKind) { s.state.List = list }

func (s *Session) toggle(ctx context.Context, list domain.ListKind, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if s.catalog.Len() > 0 {
		if _, ok := s.catalog.ByID(id); !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
	}
	before := s.store.IDs(list)
	on, err := s.store.Toggle(ctx, list, id)
	if err != nil {
		return on, err
	}
	s.history.Record(list, before)
	return on, nil
}

func (s *Session) clear(ctx context.Context, list domain.ListKind) error {
	before := s.store.IDs(list)
	if err := s.store.Clear(ctx, list); err != nil {
		return err
	}
	if len(before) > 0 {
		s.history.Record(list, before)
	}
	return nil
}

// step undoes (or redoes) the last change of list.
func (s *Session) step(ctx context.Context, list domain.ListKind, redo bool) error {
	current := s.store.IDs(list)
	var (
		snap undo.Snapshot
		ok   bool
	)
	if redo {
		snap, ok = s.history.Redo(list, current)
	} else {
		snap, ok = s.history.Undo(list, current)
	}
	if !ok {
		if redo {
			return ErrNothingToRedo
		}
		return ErrNothingToUndo
	}
	if err := s.store.Replace(ctx, list, snap.IDs); err != nil {
		// put the step back so the user can retry
		if redo {
			s.history.Undo(list, snap.IDs)
		} else {
			s.history.Redo(list, snap.IDs)
		}
		return err
	}
	return nil
}

// Toggle flips id in list and returns the new membership.
func (s *Session) Toggle(ctx context.Context, list domain.ListKind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggle(ctx, list, id)
}

// Clear empties list.
func (s *Session) Clear(ctx context.Context, list domain.ListKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx, list)
}

// Status is the busy flag plus list sizes and available undo/redo steps.
type Status struct {
	Busy   bool                    `json:"busy"`
	Label  string                  `json:"label,omitempty"`
	Counts map[domain.ListKind]int `json:"counts"`
	Undo   map[domain.ListKind]int `json:"undo"`
	Redo   map[domain.ListKind]int `json:"redo"`
	Items  int                     `json:"items"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Busy:   s.busy,
		Label:  s.label,
		Counts: map[domain.ListKind]int{},
		Undo:   map[domain.ListKind]int{},
		Redo:   map[domain.ListKind]int{},
		Items:  s.catalog.Len(),
	}
	for _, l := range domain.ListKinds() {
		st.Counts[l] = s.store.Count(l)
		st.Undo[l], st.Redo[l] = s.history.Depth(l)
	}
	return st
}

func (s *Session) setLabel(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

func (s *Session) logger(op string) *slog.Logger {
	return applog.WithOperation(applog.WithComponent("session"), op)
}

// scoped returns the items an export of list would include, in catalog order.
func (s *Session) scoped(list domain.ListKind, scope domain.ExportScope) []domain.Item {
	var out []domain.Item
	for _, it := range s.catalog.Items {
		if !s.store.Has(list, it.ID) || s.shadowed(list, it.ID) {
			continue
		}
		if scope == domain.ScopeFiltered && !s.state.Criteria.Match(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Export is an encoded collage ready to be saved or served.
type Export struct {
	Data     []byte
	Format   domain.Format
	Filename string
	List     domain.ListKind
	Count    int
	Width    int
	Height   int
}

// Export renders the active list's selection. It fails with ErrEmptySelection
// before any layout or loading when nothing is selected, and with ErrBusy
// while another export runs.
func (s *Session) Export(ctx context.Context, ro domain.RenderOptions) (*Export, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	list := s.state.List
	items := s.scoped(list, ro.Scope)
	if len(items) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptySelection
	}
	if s.renderer == nil {
		s.mu.Unlock()
		return nil, errMissingRenderer
	}
	s.busy = true
	s.label = LabelLoadingFonts
	opts := s.opts
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.label = ""
		s.mu.Unlock()
	}()

	l := s.logger("export").With(slog.String("list", string(list)), slog.Int("items", len(items)))
	start := time.Now()

	ro.Title = export.TitleFor(list, ro.Title)
	plan, err := layout.New(len(items), layout.FromRender(ro))
	if err != nil {
		return nil, err
	}
	s.renderer.LoadFonts(ctx)
	s.setLabel(LabelGenerating)

	img, err := s.renderer.Render(ctx, items, plan, ro)
	if err != nil {
		l.Error("render failed", slog.Any("err", err))
		return nil, err
	}
	var buf bytes.Buffer
	format, err := export.Encode(&buf, img, ro.Format, export.EncodeOptions{
		JPEGQuality: opts.JPEGQuality,
		Title:       ro.Title,
	})
	if err != nil {
		l.Error("encode failed", slog.Any("err", err))
		return nil, err
	}
	took := time.Since(start)
	l.Info("collage exported", slog.String("format", string(format)), slog.Int("bytes", buf.Len()), slog.Duration("took", took))
	opts.Telemetry.Export(string(format), string(list), string(ro.Scope), len(items), took)

	return &Export{
		Data:     buf.Bytes(),
		Format:   format,
		Filename: export.Filename(opts.FilePrefix, list, format),
		List:     list,
		Count:    len(items),
		Width:    plan.Width,
		Height:   plan.Height,
	}, nil
}

// Notice turns an export or command error into the message shown to users.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySelection), errors.Is(err, layout.ErrNoItems):
		return NoticeEmptySelection
	case errors.Is(err, ErrBusy):
		return NoticeBusy
	case errors.Is(err, ErrUnknownItem), errors.Is(err, ErrUnknownCommand),
		errors.Is(err, filter.ErrCompanyNotInGroup), errors.Is(err, domain.ErrUnknownList),
		errors.Is(err, selection.ErrEmptyID), errors.Is(err, ErrNothingToUndo), errors.Is(err, ErrNothingToRedo):
		return err.Error()
	default:
		return NoticeRenderPrefix + err.Error()
	}
}
