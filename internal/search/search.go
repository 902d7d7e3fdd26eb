/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package search looks up background facts about a topic before the script
// is generated.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"shakespeare/internal/domain"
	applog "shakespeare/internal/log"
)

// DefaultBaseURL is the Serper API root.
const DefaultBaseURL = "https://google.serper.dev"

// ErrMissingAPIKey is returned when the client is built without a key.
var ErrMissingAPIKey = errors.New("search api key not provided")

// Searcher returns context text for a query, or domain.NoSearchData when the
// lookup found nothing usable.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// A knowledge-graph description often ends in a sentence cut off with "...".
var reTruncatedTail = regexp.MustCompile(`\s*[^.]*\.\.\.$`)

// Serper is a minimal client for the Serper web search API.
type Serper struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	log     *slog.Logger
}

// NewSerper creates a client. baseURL may be empty or carry a trailing slash.
func NewSerper(baseURL, apiKey string, timeout time.Duration) (*Serper, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Serper{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     applog.WithComponent("search"),
	}, nil
}

type serperResponse struct {
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"knowledgeGraph"`
}

// Search posts the query and extracts the knowledge-graph description.
func (s *Serper) Search(ctx context.Context, query string) (string, error) {
	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("search %s: %s: %s", req.URL.Path, resp.Status, strings.TrimSpace(string(body)))
	}

	var out serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	text := Describe(out.knowledgeDescription())
	s.log.Debug("search done", slog.Bool("knowledge_graph", out.KnowledgeGraph != nil), slog.Int("chars", len(text)))
	return text, nil
}

func (r serperResponse) knowledgeDescription() (string, bool) {
	if r.KnowledgeGraph == nil {
		return "", false
	}
	return r.KnowledgeGraph.Description, true
}

// Describe turns a knowledge-graph description into search text. A missing
// knowledge graph yields domain.NoSearchData; a trailing truncated sentence is dropped.
func Describe(desc string, found bool) string {
	if !found {
		return domain.NoSearchData
	}
	return reTruncatedTail.ReplaceAllString(desc, "")
}

// Disabled is a Searcher that never looks anything up.
type Disabled struct{}

func (Disabled) Search(context.Context, string) (string, error) { return domain.NoSearchData, nil }
