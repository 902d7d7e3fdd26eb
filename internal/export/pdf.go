/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders classified script lines into a paginated PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	applog "shakespeare/internal/log"
	"shakespeare/internal/script"
	"shakespeare/internal/textlayout"
)

// ErrRenderResource marks a font or layout resource that could not be set up.
// Nothing is rendered when it is returned.
var ErrRenderResource = errors.New("render resource unavailable")

// Layout constants, in millimetres (the gofpdf default unit).
const (
	marginSide   = 10.0
	marginBottom = 15.0

	headingSize     = 12.0
	headingCellH    = 5.0
	headingGap      = 4.0
	speakerSize     = 12.0
	speakerLineH    = 4.0
	speakerGap      = 10.0
	bodySize        = 10.0
	bodyLineH       = 4.0
	bodyGap         = 4.0
	fontFamily      = "ScriptSans"
	defaultFileBase = "script"
)

// PDFOptions controls document metadata and the faces used.
// Fonts defaults to the embedded Go fonts. A zero CreationDate uses the current time.
type PDFOptions struct {
	Title        string
	Author       string
	Fonts        *textlayout.FontLibrary
	CreationDate time.Time
}

// canvas is the subset of page operations the layout pass drives.
type canvas interface {
	SetFont(face textlayout.Face, size float64)
	// Cell writes a full-width cell of height h and moves to the next line.
	Cell(h float64, text string)
	// Write flows text inline at line height h without a line break.
	Write(h float64, text string)
	Ln(h float64)
}

// RenderPDF lays out lines on A4 pages and returns the PDF bytes.
// It does not modify lines.
func RenderPDF(lines []script.Line, opt PDFOptions) ([]byte, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "render_pdf")
	start := time.Now()

	pdf, err := render(lines, opt)
	if err != nil {
		l.Error("document setup failed", slog.Any("err", err))
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		l.Error("pdf output failed", slog.Any("err", err))
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	l.Debug("pdf rendered",
		slog.Int("lines", len(lines)),
		slog.Int("pages", pdf.PageCount()),
		slog.Int("bytes", buf.Len()),
		slog.Duration("took", time.Since(start)),
	)
	return buf.Bytes(), nil
}

func render(lines []script.Line, opt PDFOptions) (*gofpdf.Fpdf, error) {
	fonts := opt.Fonts
	if fonts == nil {
		var err error
		if fonts, err = textlayout.DefaultFonts(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenderResource, err)
		}
	}
	if err := fonts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderResource, err)
	}

	pdf, err := newDocument(fonts, opt)
	if err != nil {
		return nil, err
	}
	pdf.AddPage()
	layout(&pdfCanvas{pdf: pdf}, lines)
	return pdf, nil
}

// newDocument creates the page setup and registers both faces. Font errors
// surface here, before any page exists.
func newDocument(fonts *textlayout.FontLibrary, opt PDFOptions) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	if !opt.CreationDate.IsZero() {
		pdf.SetCreationDate(opt.CreationDate)
	}
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetCreator("shakespeare", true)

	for _, face := range []textlayout.Face{textlayout.Regular, textlayout.Bold} {
		data, _ := fonts.Bytes(face)
		pdf.AddUTF8FontFromBytes(fontFamily, face.Style(), data)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: load %s font %s: %v", ErrRenderResource, face, fonts.Source(face), err)
		}
	}

	pdf.SetLeftMargin(marginSide)
	pdf.SetRightMargin(marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	return pdf, nil
}

// layout is the single pass over the script. Font and cursor state live in c.
func layout(c canvas, lines []script.Line) {
	for _, ln := range lines {
		switch ln.Kind {
		case script.Heading:
			c.SetFont(textlayout.Bold, headingSize)
			c.Cell(headingCellH, ln.Text)
			c.Ln(headingGap)
		case script.SpeakerCue:
			c.SetFont(textlayout.Bold, speakerSize)
			c.Write(speakerLineH, ln.Text)
			c.Ln(speakerGap)
		default:
			for _, sp := range ln.Spans {
				if sp.Emphasis {
					c.SetFont(textlayout.Bold, bodySize)
				} else {
					c.SetFont(textlayout.Regular, bodySize)
				}
				c.Write(bodyLineH, sp.Text)
			}
			c.Ln(bodyGap)
		}
	}
}

type pdfCanvas struct{ pdf *gofpdf.Fpdf }

func (p *pdfCanvas) SetFont(face textlayout.Face, size float64) {
	p.pdf.SetFont(fontFamily, face.Style(), size)
}

func (p *pdfCanvas) Cell(h float64, text string) {
	p.pdf.CellFormat(0, h, text, "", 1, "", false, 0, "")
}

func (p *pdfCanvas) Write(h float64, text string) { p.pdf.Write(h, text) }

func (p *pdfCanvas) Ln(h float64) { p.pdf.Ln(h) }

// FileName derives the download name from a generated title: embedded
// newlines are removed and ".pdf" is appended.
func FileName(title string) string {
	base := strings.ReplaceAll(title, "\n", "")
	if strings.TrimSpace(base) == "" {
		base = defaultFileBase
	}
	return base + ".pdf"
}
