/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package api serves the web form, the JSON API, and PDF downloads.
package api

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shakespeare/internal/domain"
	"shakespeare/internal/generate"
	applog "shakespeare/internal/log"
	"shakespeare/internal/storage"
	"shakespeare/internal/telemetry"
	"shakespeare/internal/textlayout"
)

//go:embed templates/*.html
var templatesFS embed.FS

// History is the record store the server needs.
type History interface {
	Save(ctx context.Context, rec domain.Record) (domain.Record, error)
	Get(ctx context.Context, id int64) (domain.Record, error)
	List(ctx context.Context, q storage.Query) ([]domain.Record, error)
	Ping(ctx context.Context) error
}

// Options wires the server to its collaborators. Acquirer and History are required.
type Options struct {
	Acquirer generate.Acquirer
	History  History
	// Fonts may be nil for the embedded Go fonts.
	Fonts     *textlayout.FontLibrary
	Metrics   *Metrics
	Telemetry *telemetry.Client
	// CredentialConfigured tells the form that a server-side key exists, so
	// the key field may be left empty.
	CredentialConfigured bool
	Debug                bool
	Now                  func() time.Time
}

type Server struct {
	opt    Options
	engine *gin.Engine
	log    *slog.Logger
}

func New(opt Options) *Server {
	if opt.Metrics == nil {
		opt.Metrics = NewMetrics()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if !opt.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{opt: opt, log: applog.WithComponent("api")}

	r := gin.New()
	r.Use(requestID(), requestLogger(s.log, opt.Metrics), recovery(s.log))
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", s.indexPage)
	r.POST("/generate", s.generatePage)
	r.GET("/scripts/:id/pdf", s.downloadPDF)
	r.POST("/render", s.renderText)

	api := r.Group("/api")
	{
		api.POST("/scripts", s.createScript)
		api.GET("/scripts", s.listScripts)
		api.GET("/scripts/:id", s.getScript)
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/readyz", s.ready)
	r.GET("/version", s.version)
	r.GET("/metrics", gin.WrapH(opt.Metrics.Handler()))

	r.NoRoute(func(c *gin.Context) { failure(c, http.StatusNotFound, ErrorNotFound, "Not found.") })
	s.engine = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }
