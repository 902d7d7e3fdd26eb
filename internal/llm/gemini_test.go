/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiCompleteSendsTemperatureAndKeyHeader(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("api key must not be in the query: %q", r.URL.RawQuery)
		}
		if r.Header.Get("x-goog-api-key") != "k-123" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Buzz "},{"text":"Worthy"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":7,"candidatesTokenCount":2}}`))
	}))
	defer srv.Close()

	g, err := NewGemini("k-123", GeminiOptions{BaseURL: srv.URL + "/", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	resp, err := g.Complete(context.Background(), CompletionRequest{Prompt: "title please", Temperature: 0})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Buzz Worthy" || resp.FinishReason != "STOP" || resp.PromptTokens != 7 || resp.OutputTokens != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ModelName != "test-model" {
		t.Fatalf("model name: %q", resp.ModelName)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "title please" {
		t.Fatalf("prompt not forwarded: %+v", got)
	}
}

func TestGeminiZeroTemperatureIsSent(t *testing.T) {
	b, err := json.Marshal(geminiRequest{GenerationConfig: geminiGenerationConfig{Temperature: 0}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"temperature":0`) {
		t.Fatalf("temperature 0 must be explicit: %s", b)
	}
}

func TestGeminiInvalidKeyIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`))
	}))
	defer srv.Close()

	g, _ := NewGemini("bad", GeminiOptions{BaseURL: srv.URL})
	_, err := g.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.Unauthorized() || apiErr.Message != "API key not valid." {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGeminiServerErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream melted", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g, _ := NewGemini("k", GeminiOptions{BaseURL: srv.URL})
	_, err := g.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Unauthorized() {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(apiErr.Message, "upstream melted") {
		t.Fatalf("message lost: %q", apiErr.Message)
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g, _ := NewGemini("k", GeminiOptions{BaseURL: srv.URL})
	if _, err := g.Complete(context.Background(), CompletionRequest{Prompt: "x"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini("  ", GeminiOptions{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
