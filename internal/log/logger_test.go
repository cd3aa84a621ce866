/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitAndStructuredLoggingToFile verifies that Init with a file handler writes JSON logs
// and that static and contextual attributes are present.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("gco_log_%d.json", time.Now().UnixNano()))
	t.Cleanup(func() { _ = os.Remove(fpath) })

	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Writer: &console})

	l := WithComponent("testcomp")
	l = WithOperation(l, "op1")
	l.Info("hello world", slog.String("k", "v"))

	time.Sleep(50 * time.Millisecond)

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "gocollector" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if m["component"] != "testcomp" || m["op"] != "op1" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if m["msg"] != "hello world" || m["k"] != "v" {
		t.Fatalf("record mismatch: %v", m)
	}
	if !strings.Contains(console.String(), "hello world") {
		t.Fatalf("console handler did not receive record: %q", console.String())
	}
}

func TestConsoleFormatUsesLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "console", Writer: &buf})
	L().Info("quiet")
	L().Warn("loud", slog.Int("n", 42))
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info record leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "loud") || !strings.Contains(out, "42") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("GCO_LOG_LEVEL", "warn")
	t.Setenv("GCO_LOG_FORMAT", "json")
	t.Setenv("GCO_LOG_SOURCE", "true")
	t.Setenv("GCO_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("GCO_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := multiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("multi should be enabled when any child is")
	}
	l := slog.New(h).WithGroup("g").With(slog.String("k", "v"))
	l.Info("first")
	l.Error("second")
	if !strings.Contains(a.String(), "first") || !strings.Contains(a.String(), "second") {
		t.Fatalf("debug handler missing records: %q", a.String())
	}
	if strings.Contains(b.String(), "first") || !strings.Contains(b.String(), "second") {
		t.Fatalf("error handler filter wrong: %q", b.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "WARNING": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
