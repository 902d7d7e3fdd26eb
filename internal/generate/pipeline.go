/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package generate acquires a title and a marked-up script for a request:
// one search lookup followed by two sequential completions.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shakespeare/internal/domain"
	"shakespeare/internal/llm"
	applog "shakespeare/internal/log"
	"shakespeare/internal/search"
)

var (
	// ErrMissingCredential is returned before any remote call when no credential is available.
	ErrMissingCredential = errors.New("missing api credential")
	// ErrInvalidCredential is returned when the model provider rejects the credential.
	ErrInvalidCredential = errors.New("invalid api credential")
	// ErrUpstreamUnavailable wraps any failure of the search or generation services.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// Acquirer produces a script for a request.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.Request) (domain.Result, error)
}

// CompleterFactory builds a Completer bound to a credential.
type CompleterFactory func(credential string) (llm.Completer, error)

// Step reports the duration and outcome of one remote call.
type Step func(name string, d time.Duration, err error)

// Pipeline is the Acquirer used in production.
type Pipeline struct {
	// Search may be nil, in which case the search text is domain.NoSearchData.
	Search       search.Searcher
	NewCompleter CompleterFactory
	// Credential is used when the request carries none.
	Credential string
	Model      string
	OnStep     Step
}

// Acquire runs search, title, and script in that order. It makes a single
// attempt at each call.
func (p *Pipeline) Acquire(ctx context.Context, req domain.Request) (domain.Result, error) {
	log := applog.WithOperation(applog.WithComponent("generate"), "acquire")
	if err := req.Validate(); err != nil {
		return domain.Result{}, err
	}
	req.Length, _ = domain.ParseLength(string(req.Length))
	req.Audience, _ = domain.ParseAudience(string(req.Audience))
	cred := strings.TrimSpace(req.Credential)
	if cred == "" {
		cred = strings.TrimSpace(p.Credential)
	}
	if cred == "" {
		return domain.Result{}, ErrMissingCredential
	}
	if p.NewCompleter == nil {
		return domain.Result{}, errors.New("generate: no completer factory configured")
	}
	comp, err := p.NewCompleter(cred)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return domain.Result{}, ErrMissingCredential
		}
		return domain.Result{}, err
	}

	searchData := domain.NoSearchData
	if p.Search != nil {
		start := time.Now()
		searchData, err = p.Search.Search(ctx, req.Topic)
		p.step("search", start, err)
		if err != nil {
			log.Warn("search failed", slog.String("err", err.Error()))
			return domain.Result{}, fmt.Errorf("%w: search: %v", ErrUpstreamUnavailable, err)
		}
		if strings.TrimSpace(searchData) == "" {
			searchData = domain.NoSearchData
		}
	}

	title, err := p.complete(ctx, comp, "title", TitlePrompt(req.Topic), req.Creativity)
	if err != nil {
		return domain.Result{}, err
	}
	script, err := p.complete(ctx, comp, "script", ScriptPrompt(title, req.Length, req.Audience, searchData), req.Creativity)
	if err != nil {
		return domain.Result{}, err
	}

	log.Info("script acquired",
		slog.Int("title_chars", len(title)),
		slog.Int("script_chars", len(script)),
		slog.Bool("search_data", searchData != domain.NoSearchData))
	return domain.Result{Title: title, Script: script, SearchData: searchData}, nil
}

func (p *Pipeline) complete(ctx context.Context, comp llm.Completer, name, prompt string, temperature float64) (string, error) {
	start := time.Now()
	resp, err := comp.Complete(ctx, llm.CompletionRequest{Prompt: prompt, Temperature: temperature, Model: p.Model})
	p.step(name, start, err)
	if err != nil {
		return "", classify(name, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (p *Pipeline) step(name string, start time.Time, err error) {
	if p.OnStep != nil {
		p.OnStep(name, time.Since(start), err)
	}
}

func classify(step string, err error) error {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, step, err)
}
