/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shakespeare/internal/domain"
	"shakespeare/internal/llm"
)

type fakeCompleter struct {
	replies []string
	errs    []error
	got     []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	i := len(f.got)
	f.got = append(f.got, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return &llm.CompletionResponse{Text: f.replies[i]}, nil
}

type fakeSearcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeSearcher) Search(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func validRequest() domain.Request {
	return domain.Request{Topic: "honeybees", Length: "10", Audience: "kids", Creativity: 0.7, Credential: "key-1"}
}

func TestAcquireRunsSearchTitleScript(t *testing.T) {
	comp := &fakeCompleter{replies: []string{"  Buzz Worthy\n", "## Intro (0:00)\nHost: hi"}}
	srch := &fakeSearcher{text: "Bees make honey."}
	var steps []string
	var gotCred string
	p := &Pipeline{
		Search: srch,
		NewCompleter: func(c string) (llm.Completer, error) {
			gotCred = c
			return comp, nil
		},
		Model:  "m",
		OnStep: func(name string, _ time.Duration, _ error) { steps = append(steps, name) },
	}
	res, err := p.Acquire(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if res.Title != "Buzz Worthy" || res.Script != "## Intro (0:00)\nHost: hi" || res.SearchData != "Bees make honey." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotCred != "key-1" {
		t.Fatalf("credential not forwarded: %q", gotCred)
	}
	if strings.Join(steps, ",") != "search,title,script" {
		t.Fatalf("steps = %v", steps)
	}
	if len(comp.got) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(comp.got))
	}
	if !strings.Contains(comp.got[0].Prompt, "topic: honeybees.") {
		t.Fatalf("title prompt = %q", comp.got[0].Prompt)
	}
	sp := comp.got[1].Prompt
	for _, want := range []string{"'Buzz Worthy'", "lasts 10 Mins", "are Kids", "context: Bees make honey."} {
		if !strings.Contains(sp, want) {
			t.Fatalf("script prompt missing %q: %q", want, sp)
		}
	}
	for _, r := range comp.got {
		if r.Temperature != 0.7 || r.Model != "m" {
			t.Fatalf("temperature/model not forwarded: %+v", r)
		}
	}
}

func TestAcquireWithoutSearcherUsesSentinel(t *testing.T) {
	comp := &fakeCompleter{replies: []string{"T", "S"}}
	p := &Pipeline{NewCompleter: func(string) (llm.Completer, error) { return comp, nil }}
	res, err := p.Acquire(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if res.SearchData != domain.NoSearchData || res.HasSearchData() {
		t.Fatalf("expected sentinel, got %q", res.SearchData)
	}
	if !strings.Contains(comp.got[1].Prompt, "context: None") {
		t.Fatalf("sentinel not in prompt: %q", comp.got[1].Prompt)
	}
}

func TestMissingCredentialMakesNoRemoteCall(t *testing.T) {
	srch := &fakeSearcher{text: "x"}
	built := false
	p := &Pipeline{
		Search:       srch,
		NewCompleter: func(string) (llm.Completer, error) { built = true; return &fakeCompleter{}, nil },
	}
	req := validRequest()
	req.Credential = "   "
	_, err := p.Acquire(context.Background(), req)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if built || srch.calls != 0 {
		t.Fatalf("remote capability touched without credential")
	}
}

func TestFallbackCredential(t *testing.T) {
	var got string
	p := &Pipeline{
		Credential: "server-key",
		NewCompleter: func(c string) (llm.Completer, error) {
			got = c
			return &fakeCompleter{replies: []string{"T", "S"}}, nil
		},
	}
	req := validRequest()
	req.Credential = ""
	if _, err := p.Acquire(context.Background(), req); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "server-key" {
		t.Fatalf("fallback credential not used: %q", got)
	}
}

func TestInvalidRequestRejected(t *testing.T) {
	p := &Pipeline{NewCompleter: func(string) (llm.Completer, error) { t.Fatal("should not build"); return nil, nil }}
	req := validRequest()
	req.Creativity = 1.5
	if _, err := p.Acquire(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearchFailureIsUpstreamUnavailable(t *testing.T) {
	comp := &fakeCompleter{}
	p := &Pipeline{
		Search:       &fakeSearcher{err: errors.New("dial tcp: refused")},
		NewCompleter: func(string) (llm.Completer, error) { return comp, nil },
	}
	_, err := p.Acquire(context.Background(), validRequest())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(comp.got) != 0 {
		t.Fatalf("generation ran after search failure")
	}
}

func TestGenerationFailureIsSingleAttempt(t *testing.T) {
	comp := &fakeCompleter{replies: []string{"T", ""}, errs: []error{nil, &llm.APIError{Provider: "gemini", StatusCode: 503, Message: "overloaded"}}}
	p := &Pipeline{NewCompleter: func(string) (llm.Completer, error) { return comp, nil }}
	_, err := p.Acquire(context.Background(), validRequest())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(comp.got) != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", len(comp.got))
	}
}

func TestRejectedKeyIsInvalidCredential(t *testing.T) {
	comp := &fakeCompleter{replies: []string{""}, errs: []error{&llm.APIError{Provider: "gemini", StatusCode: 400, Status: "API_KEY_INVALID", Message: "bad key"}}}
	p := &Pipeline{NewCompleter: func(string) (llm.Completer, error) { return comp, nil }}
	_, err := p.Acquire(context.Background(), validRequest())
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestPrompts(t *testing.T) {
	if got := TitlePrompt("Go"); got != "Generate one YouTube video title with this topic: Go. Please answer directly." {
		t.Fatalf("TitlePrompt = %q", got)
	}
	sp := ScriptPrompt("A {{x}}", domain.Length5, domain.Adults, domain.NoSearchData)
	if !strings.HasPrefix(sp, "Create a YouTube script with the title 'A {{x}}' that lasts 5 Mins.") {
		t.Fatalf("ScriptPrompt = %q", sp)
	}
}
