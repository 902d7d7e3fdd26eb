/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shakespeare/internal/domain"
	"shakespeare/internal/export"
	"shakespeare/internal/script"
	"shakespeare/internal/storage"
	"shakespeare/internal/version"
)

const maxBody = 1 << 20

type scriptRequest struct {
	Topic      string   `json:"topic"`
	Length     string   `json:"length"`
	Audience   string   `json:"audience"`
	Creativity *float64 `json:"creativity"`
	APIKey     string   `json:"api_key"`
}

// scriptView is a record plus its download link.
type scriptView struct {
	domain.Record
	PDFURL string `json:"pdf_url"`
}

func newScriptView(rec domain.Record) scriptView {
	return scriptView{Record: rec, PDFURL: pdfURL(rec.ID)}
}

func pdfURL(id int64) string { return fmt.Sprintf("/scripts/%d/pdf", id) }

func (s *Server) createScript(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		failure(c, http.StatusBadRequest, ErrorBadRequest, "Could not read request body.")
		return
	}
	if err := validateScriptRequest(body); err != nil {
		failErr(c, err)
		return
	}
	var in scriptRequest
	if err := json.Unmarshal(body, &in); err != nil {
		failure(c, http.StatusBadRequest, ErrorBadRequest, "Malformed JSON.")
		return
	}
	req := domain.Request{
		Topic:      in.Topic,
		Length:     domain.Length(in.Length),
		Audience:   domain.Audience(in.Audience),
		Creativity: domain.DefaultCreativity,
		Credential: in.APIKey,
	}
	if in.Creativity != nil {
		req.Creativity = *in.Creativity
	}
	rec, err := s.generate(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusCreated, newScriptView(rec))
}

// generate runs the pipeline and stores the result.
func (s *Server) generate(ctx context.Context, req domain.Request) (domain.Record, error) {
	start := time.Now()
	res, err := s.opt.Acquirer.Acquire(ctx, req)
	if err != nil {
		_, code, _ := classifyError(err)
		s.opt.Metrics.observeGeneration(code)
		s.opt.Telemetry.ScriptFailed(code)
		return domain.Record{}, err
	}
	s.opt.Metrics.observeGeneration("")
	rec, err := s.opt.History.Save(ctx, domain.NewRecord(req, res, s.opt.Now()))
	if err != nil {
		return domain.Record{}, err
	}
	s.opt.Telemetry.ScriptGenerated(string(rec.Length), string(rec.Audience), res.HasSearchData(), time.Since(start))
	s.log.Info("script stored", slog.Int64("id", rec.ID), slog.Duration("took", time.Since(start)))
	return rec, nil
}

func (s *Server) listScripts(c *gin.Context) {
	q := storage.Query{Text: c.Query("q")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			failure(c, http.StatusBadRequest, ErrorBadRequest, "limit must be a positive integer.")
			return
		}
		q.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			failure(c, http.StatusBadRequest, ErrorBadRequest, "offset must be a non-negative integer.")
			return
		}
		q.Offset = n
	}
	if v := c.Query("audience"); v != "" {
		a, err := domain.ParseAudience(v)
		if err != nil {
			failErr(c, err)
			return
		}
		q.Audience = a
	}
	recs, err := s.opt.History.List(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]scriptView, len(recs))
	for i, r := range recs {
		out[i] = newScriptView(r)
	}
	success(c, http.StatusOK, out)
}

func (s *Server) getScript(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	success(c, http.StatusOK, newScriptView(rec))
}

func (s *Server) lookup(c *gin.Context) (domain.Record, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		failure(c, http.StatusBadRequest, ErrorBadRequest, "invalid script id.")
		return domain.Record{}, false
	}
	rec, err := s.opt.History.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return domain.Record{}, false
	}
	return rec, true
}

func (s *Server) downloadPDF(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	s.sendPDF(c, rec.Title, rec.Script)
}

// renderText turns a raw marked-up body into a PDF without any remote call.
func (s *Server) renderText(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		failure(c, http.StatusBadRequest, ErrorBadRequest, "Could not read request body.")
		return
	}
	s.sendPDF(c, c.Query("title"), string(body))
}

func (s *Server) sendPDF(c *gin.Context, title, text string) {
	lines := script.Parse(text)
	b, err := export.RenderPDF(lines, export.PDFOptions{Title: title, Fonts: s.opt.Fonts})
	s.opt.Metrics.observeRender(err)
	if err != nil {
		failErr(c, err)
		return
	}
	s.opt.Telemetry.PDFRendered(len(lines), len(b))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(title)}))
	c.Data(http.StatusOK, "application/pdf", b)
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.opt.History.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.String(http.StatusServiceUnavailable, "db not ready")
		return
	}
	c.String(http.StatusOK, "ready")
}

func (s *Server) version(c *gin.Context) {
	c.String(http.StatusOK, version.String())
}
