/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"log/slog"
	"time"

	"shakespeare/internal/config"
	"shakespeare/internal/generate"
	"shakespeare/internal/llm"
	"shakespeare/internal/search"
	"shakespeare/internal/textlayout"
)

// pipeline builds the acquisition pipeline from configuration. Search is
// skipped (search text "None") when disabled or when no Serper key is set.
func (a *app) pipeline(onStep generate.Step) (*generate.Pipeline, error) {
	p := &generate.Pipeline{
		Credential: a.secrets.GeminiAPIKey,
		Model:      a.cfg.LLM.Model,
		OnStep:     onStep,
		NewCompleter: func(cred string) (llm.Completer, error) {
			return llm.NewGemini(cred, llm.GeminiOptions{
				BaseURL: a.cfg.LLM.BaseURL,
				Model:   a.cfg.LLM.Model,
				Timeout: config.Millis(a.cfg.LLM.TimeoutMs, time.Minute),
			})
		},
	}
	switch {
	case !a.cfg.Search.Enabled:
		a.log.Info("search enrichment disabled")
	case a.secrets.SerperAPIKey == "":
		a.log.Warn("search enrichment skipped: no Serper key configured")
	default:
		s, err := search.NewSerper(a.cfg.Search.BaseURL, a.secrets.SerperAPIKey, config.Millis(a.cfg.Search.TimeoutMs, 10*time.Second))
		if err != nil {
			return nil, err
		}
		p.Search = s
	}
	return p, nil
}

func (a *app) fonts() (*textlayout.FontLibrary, error) {
	fl, err := textlayout.LoadFonts(a.cfg.Render.FontRegular, a.cfg.Render.FontBold)
	if err != nil {
		return nil, err
	}
	a.log.Debug("fonts loaded",
		slog.String("regular", fl.Source(textlayout.Regular)),
		slog.String("bold", fl.Source(textlayout.Bold)))
	return fl, nil
}
