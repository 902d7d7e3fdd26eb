/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage events (scripts generated,
// PDFs rendered) and optional crash uploads. Event properties never carry
// topics, scripts, or credentials.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "shakespeare/internal/log"
	"shakespeare/internal/version"
)

// Event names.
const (
	EventServerStarted   = "server_started"
	EventScriptGenerated = "script_generated"
	EventScriptFailed    = "script_failed"
	EventPDFRendered     = "pdf_rendered"
)

const (
	defaultTimeout = 1500 * time.Millisecond
	queueSize      = 64
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
//   - SHK_TELEMETRY_OPT_IN: "1", "true", "yes" or "on" enables events
//   - SHK_TELEMETRY_URL: endpoint receiving JSON events
//   - SHK_CRASH_UPLOAD_URL: endpoint receiving crash reports
//   - SHK_TELEMETRY_TIMEOUT_MS: per-request timeout, default 1500
//   - SHK_TELEMETRY_DEBUG: any value logs send attempts
//
// Opting in without an endpoint sends nothing.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        optIn(os.Getenv("SHK_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("SHK_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("SHK_CRASH_UPLOAD_URL")),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv("SHK_TELEMETRY_DEBUG") != "",
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv("SHK_TELEMETRY_TIMEOUT_MS"))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

func optIn(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event is the JSON body posted for every usage event.
type Event struct {
	Name    string         `json:"name"`
	Time    time.Time      `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// job is one queue entry: an event to send, or a flush marker to acknowledge.
type job struct {
	ev  *Event
	ack chan struct{}
}

// Client posts events from a single goroutine. A full queue drops the event,
// so callers on the request path never block.
type Client struct {
	cfg  Config
	log  *slog.Logger
	http *http.Client

	q        chan job
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process-wide client, building it from env on first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault installs c as the process-wide client and closes the previous one.
func SetDefault(c *Client) {
	defaultMu.Lock()
	old := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if old != nil && old != c {
		old.Close()
	}
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		http: &http.Client{Timeout: cfg.Timeout},
		q:    make(chan job, queueSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.run()
	return c
}

// Enabled reports whether events are opted in and an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues name with props. It is a no-op when the client is disabled.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := &Event{
		Name:    name,
		Time:    time.Now().UTC(),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	select {
	case c.q <- job{ev: ev}:
	default:
		c.debug("telemetry queue full", slog.String("event", name))
	}
}

// ScriptGenerated records a successful generation.
func (c *Client) ScriptGenerated(length, audience string, withSearch bool, took time.Duration) {
	c.Event(EventScriptGenerated, map[string]any{
		"length":      length,
		"audience":    audience,
		"search_data": withSearch,
		"ms":          took.Milliseconds(),
	})
}

// ScriptFailed records a failed generation by error code only.
func (c *Client) ScriptFailed(code string) {
	c.Event(EventScriptFailed, map[string]any{"code": code})
}

// PDFRendered records a rendered document.
func (c *Client) PDFRendered(lines, size int) {
	c.Event(EventPDFRendered, map[string]any{"lines": lines, "bytes": size})
}

// Flush blocks until every event queued before the call has been attempted,
// or ctx ends.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	ack := make(chan struct{})
	select {
	case c.q <- job{ack: ack}:
	case <-ctx.Done():
		return
	case <-c.done:
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	case <-c.done:
	}
}

// Close sends what is still queued and stops the sender.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case j := <-c.q:
			c.handle(j)
		case <-c.stop:
			for {
				select {
				case j := <-c.q:
					c.handle(j)
				default:
					return
				}
			}
		}
	}
}

func (c *Client) handle(j job) {
	if j.ack != nil {
		close(j.ack)
		return
	}
	body, err := json.Marshal(j.ev)
	if err != nil {
		return
	}
	if err := c.post(context.Background(), c.cfg.EventsURL, "application/json", body); err != nil {
		c.debug("telemetry send failed", slog.String("event", j.ev.Name), slog.Any("err", err))
		return
	}
	c.debug("telemetry event sent", slog.String("event", j.ev.Name))
}

// UploadCrash posts a crash report synchronously when opted in and a crash
// endpoint is configured.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	if err := c.post(context.Background(), c.cfg.CrashURL, "text/plain; charset=utf-8", report); err != nil {
		c.debug("crash upload failed", slog.Any("err", err))
	}
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint answered %s", resp.Status)
	}
	return nil
}

func (c *Client) debug(msg string, attrs ...any) {
	if c.cfg.DebugLogging {
		c.log.Debug(msg, attrs...)
	}
}
