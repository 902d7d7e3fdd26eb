/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	applog "shakespeare/internal/log"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-1.5-flash"
)

// GeminiOptions configures the Gemini client. Zero values select defaults.
type GeminiOptions struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *slog.Logger
}

// NewGemini returns a client bound to apiKey.
func NewGemini(apiKey string, opt GeminiOptions) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	g := &Gemini{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(opt.BaseURL, "/"),
		model:   opt.Model,
		client:  opt.HTTPClient,
		log:     applog.WithComponent("llm").With(slog.String("provider", "gemini")),
	}
	if g.baseURL == "" {
		g.baseURL = DefaultGeminiBaseURL
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	if g.client == nil {
		timeout := opt.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		g.client = &http.Client{Timeout: timeout}
	}
	return g, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// Complete sends one generateContent call. The API key travels in a header,
// never in the URL.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseGeminiError(resp.StatusCode, raw)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w (finish reason %s)", ErrEmptyResponse, out.Candidates[0].FinishReason)
	}

	name := out.ModelVersion
	if name == "" {
		name = model
	}
	g.log.Debug("completion done",
		slog.String("model", name),
		slog.Int("prompt_tokens", out.UsageMetadata.PromptTokenCount),
		slog.Int("output_tokens", out.UsageMetadata.CandidatesTokenCount),
		slog.Duration("took", time.Since(start)),
	)
	return &CompletionResponse{
		Text:         sb.String(),
		FinishReason: out.Candidates[0].FinishReason,
		ModelName:    name,
		PromptTokens: out.UsageMetadata.PromptTokenCount,
		OutputTokens: out.UsageMetadata.CandidatesTokenCount,
	}, nil
}

func parseGeminiError(code int, raw []byte) error {
	apiErr := &APIError{Provider: "gemini", StatusCode: code}
	var ge geminiError
	if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
		apiErr.Message = ge.Error.Message
		apiErr.Status = ge.Error.Status
		for _, d := range ge.Error.Details {
			if d.Reason != "" {
				apiErr.Status = d.Reason
				break
			}
		}
		return apiErr
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	apiErr.Message = msg
	return apiErr
}
