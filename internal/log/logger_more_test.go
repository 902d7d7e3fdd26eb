/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("SHK_LOG_LEVEL", "warn")
	t.Setenv("SHK_LOG_FORMAT", "json")
	t.Setenv("SHK_LOG_SOURCE", "true")
	t.Setenv("SHK_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("SHK_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSecretsAreMasked(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Writer: &buf})
	t.Cleanup(func() { Init(Options{Level: "error", Writer: &bytes.Buffer{}}) })

	L().Info("key stored", slog.String("api_key", "AIzaSyVerySecret9876"), slog.String("topic", "bees"))

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if m["api_key"] != "****9876" {
		t.Fatalf("api_key not masked: %v", m["api_key"])
	}
	if m["topic"] != "bees" {
		t.Fatalf("topic altered: %v", m["topic"])
	}
	if strings.Contains(buf.String(), "VerySecret") {
		t.Fatalf("secret leaked: %q", buf.String())
	}
}

func TestTeeFansOutByLevel(t *testing.T) {
	var low, high bytes.Buffer
	h := tee{
		slog.NewJSONHandler(&low, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&high, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	ctx := context.Background()
	if !h.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("debug should be enabled by the low handler")
	}

	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "api")}))
	l.Debug("trace")
	l.Error("boom")

	if !strings.Contains(low.String(), "trace") || !strings.Contains(low.String(), "boom") {
		t.Fatalf("low handler missed records: %q", low.String())
	}
	if strings.Contains(high.String(), "trace") || !strings.Contains(high.String(), `"component":"api"`) {
		t.Fatalf("high handler output: %q", high.String())
	}
}

func TestLevelString(t *testing.T) {
	cases := map[slog.Level]string{
		slog.LevelDebug:     "DBG",
		slog.LevelInfo:      "INF",
		slog.LevelWarn + 1:  "WRN",
		slog.LevelError:     "ERR",
		slog.LevelError + 4: "ERR",
	}
	for in, want := range cases {
		if got := levelString(in); got != want {
			t.Fatalf("levelString(%v) = %q, want %q", in, got, want)
		}
	}
}
