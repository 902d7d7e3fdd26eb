/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shakespeare/internal/domain"
	"shakespeare/internal/export"
)

type formPage struct {
	Lengths              []domain.Length
	Audiences            []domain.Audience
	Topic                string
	Length               domain.Length
	Audience             domain.Audience
	Creativity           float64
	CredentialConfigured bool
	Error                string
}

type resultPage struct {
	Title         string
	Script        string
	SearchData    string
	HasSearchData bool
	DownloadURL   string
	FileName      string
}

func (s *Server) newForm() formPage {
	return formPage{
		Lengths:              domain.Lengths(),
		Audiences:            domain.Audiences(),
		Creativity:           domain.DefaultCreativity,
		CredentialConfigured: s.opt.CredentialConfigured,
	}
}

func (s *Server) indexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.newForm())
}

// generatePage handles the form submit. Failures re-render the form with the
// entered values and an inline message; the key is never echoed back.
func (s *Server) generatePage(c *gin.Context) {
	page := s.newForm()
	page.Topic = strings.TrimSpace(c.PostForm("topic"))
	page.Length = domain.Length(c.PostForm("length"))
	page.Audience = domain.Audience(c.PostForm("audience"))

	req := domain.Request{
		Topic:      page.Topic,
		Length:     page.Length,
		Audience:   page.Audience,
		Creativity: domain.DefaultCreativity,
		Credential: c.PostForm("api_key"),
	}
	if v := strings.TrimSpace(c.PostForm("creativity")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			page.Error = "Creativity must be a number between 0 and 1."
			c.HTML(http.StatusBadRequest, "index.html", page)
			return
		}
		req.Creativity = f
		page.Creativity = f
	}

	rec, err := s.generate(c.Request.Context(), req)
	if err != nil {
		status, _, msg := classifyError(err)
		_ = c.Error(err)
		page.Error = msg
		c.HTML(status, "index.html", page)
		return
	}
	c.HTML(http.StatusOK, "result.html", resultPage{
		Title:         rec.Title,
		Script:        rec.Script,
		SearchData:    rec.SearchData,
		HasSearchData: rec.Result().HasSearchData(),
		DownloadURL:   pdfURL(rec.ID),
		FileName:      export.FileName(rec.Title),
	})
}
