/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shakespeare/internal/domain"
	"shakespeare/internal/export"
	"shakespeare/internal/generate"
	"shakespeare/internal/storage"
)

// Error codes returned in the JSON envelope.
const (
	ErrorBadRequest            = "BAD_REQUEST"
	ErrorNotFound              = "NOT_FOUND"
	ErrorInternalError         = "INTERNAL_ERROR"
	ErrorAPIKeyMissing         = "API_KEY_MISSING"
	ErrorAPIKeyInvalid         = "API_KEY_INVALID"
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
	ErrorExportFailed          = "EXPORT_FAILED"
)

// Response is the JSON envelope for every /api answer.
type Response struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classifyError maps a pipeline, render, or storage error to a status, code,
// and user-facing message. Unknown errors get a generic message.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, generate.ErrMissingCredential):
		return http.StatusUnauthorized, ErrorAPIKeyMissing, "Please provide a valid Gemini API key."
	case errors.Is(err, generate.ErrInvalidCredential):
		return http.StatusUnauthorized, ErrorAPIKeyInvalid, "The Gemini API key was rejected."
	case errors.Is(err, generate.ErrUpstreamUnavailable):
		return http.StatusBadGateway, ErrorLLMServiceUnavailable, "The script service is unavailable, please try again later."
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, ErrorBadRequest, err.Error()
	case errors.Is(err, export.ErrRenderResource):
		return http.StatusInternalServerError, ErrorExportFailed, "The PDF could not be rendered."
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorNotFound, "Script not found."
	}
	return http.StatusInternalServerError, ErrorInternalError, "An internal error occurred."
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data, Timestamp: time.Now().UTC(), RequestID: c.GetString(requestIDKey)})
}

func failure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(requestIDKey),
	})
}

func failErr(c *gin.Context, err error) {
	status, code, msg := classifyError(err)
	_ = c.Error(err)
	failure(c, status, code, msg)
}
