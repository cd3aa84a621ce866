/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type sink struct {
	mu      sync.Mutex
	events  [][]byte
	crashes [][]byte
}

func (s *sink) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.events = append(s.events, b)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, b)
		s.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *sink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), len(s.crashes)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestClient_ExportEventAndUploadCrash(t *testing.T) {
	s := &sink{}
	srv := s.server(t)

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Export("png", "owned", "all", 12, 340*time.Millisecond)
	c.Flush(context.Background())
	waitFor(t, func() bool { n, _ := s.counts(); return n > 0 })

	s.mu.Lock()
	var ev Event
	err := json.Unmarshal(s.events[0], &ev)
	s.mu.Unlock()
	if err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if ev.Name != "export" || ev.RunID != c.RunID() || ev.TS == "" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Props["format"] != "png" || ev.Props["count"] != float64(12) {
		t.Fatalf("props = %v", ev.Props)
	}

	c.UploadCrash([]byte("STACKTRACE"))
	waitFor(t, func() bool { _, n := s.counts(); return n > 0 })
}

func TestClient_CatalogLoadedFormat(t *testing.T) {
	s := &sink{}
	srv := s.server(t)

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: 2 * time.Second})
	defer c.Close()
	c.CatalogLoaded("xlsx", 7, true)
	c.CatalogLoaded("", 0, false)
	c.Flush(context.Background())
	waitFor(t, func() bool { n, _ := s.counts(); return n >= 2 })

	s.mu.Lock()
	defer s.mu.Unlock()
	got := map[bool]Event{}
	for _, raw := range s.events {
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad event json: %v", err)
		}
		got[ev.Props["ok"] == true] = ev
	}
	if got[true].Props["format"] != "xlsx" || got[true].Props["items"] != float64(7) {
		t.Fatalf("ok event props = %v", got[true].Props)
	}
	if _, has := got[false].Props["format"]; has {
		t.Fatalf("failed load should omit format: %v", got[false].Props)
	}
}

func TestClient_DisabledAndEmptyEventName(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.CatalogLoaded("csv", 3, true)
	c.UploadCrash([]byte("ignored"))

	c2 := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(nil)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests, got %d", hits)
	}
}

func TestClient_SendErrorsAreSwallowed(t *testing.T) {
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	defer c.Close()
	c.Event("err", map[string]any{"a": 1})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	c.Event("x", nil)
	c.UploadCrash(nil)
	c.Flush(context.Background())
	c.Close()
	if c.Enabled() || c.RunID() != "" {
		t.Fatalf("nil client should be inert")
	}
}

func TestFromEnvAndDefault(t *testing.T) {
	t.Setenv("GCO_TELEMETRY_OPT_IN", "true")
	t.Setenv("GCO_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("GCO_CRASH_UPLOAD_URL", "")
	t.Setenv("GCO_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}
	c := NewDefault(cfg)
	t.Cleanup(func() { NewDefault(Config{}) })
	if Default() != c || !Default().Enabled() {
		t.Fatalf("default client not installed")
	}
}
