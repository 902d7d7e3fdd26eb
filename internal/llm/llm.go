/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package llm defines the text-completion capability used by the script
// pipeline and its Gemini implementation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned when a provider is built without a key.
	ErrMissingAPIKey = errors.New("llm api key not provided")
	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("llm returned no text")
)

// CompletionRequest is a single-turn generation.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Model        string
}

// CompletionResponse is the generated text plus usage figures when the provider reports them.
type CompletionResponse struct {
	Text         string
	FinishReason string
	ModelName    string
	PromptTokens int
	OutputTokens int
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Provider   string
	StatusCode int
	Status     string // provider status string, e.g. "INVALID_ARGUMENT"
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (%d %s): %s", e.Provider, e.StatusCode, e.Status, e.Message)
}

// Unauthorized reports whether the provider rejected the credential.
func (e *APIError) Unauthorized() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		// Gemini answers 400 with reason API_KEY_INVALID for a bad key.
		return e.Status == "API_KEY_INVALID"
	}
	return false
}
