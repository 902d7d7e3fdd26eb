/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shakespeare/internal/export"
	"shakespeare/internal/script"
)

func newRenderCmd(a *app) *cobra.Command {
	var out, title string
	cmd := &cobra.Command{
		Use:   "render <script.txt|->",
		Short: "Render a marked-up script file to PDF without network access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			var err error
			if args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			if out == "" {
				out = defaultPDFName(args[0], title)
			}
			return a.writePDF(out, title, string(src))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF path")
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	return cmd
}

// defaultPDFName prefers the title, then the input file name.
func defaultPDFName(input, title string) string {
	if strings.TrimSpace(title) != "" || input == "-" {
		return export.FileName(title)
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}

func (a *app) writePDF(path, title, text string) error {
	fonts, err := a.fonts()
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	b, err := export.RenderPDF(script.Parse(text), export.PDFOptions{Title: title, Fonts: fonts})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	a.log.Info("pdf written", slog.String("path", path), slog.Int("bytes", len(b)))
	return nil
}
