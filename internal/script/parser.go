/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"regexp"
	"strings"
)

const (
	headingMarker = "##"
	speakerLabel  = "host:"
	emphasisMark  = "**"
	// TitleLabel prefixes the display text of every Heading line.
	TitleLabel = "Title: "
)

var (
	// Non-greedy so "**a** and **b**" yields two emphasis spans.
	reEmphasis = regexp.MustCompile(`\*\*.*?\*\*`)
	// A trailing parenthetical, e.g. "Intro (teaser)". Matches from the first "(" that reaches the end.
	reTrailingParen = regexp.MustCompile(`\s*\(.*\)$`)
)

// Lines splits a document into lines on "\n", "\r\n" or "\r".
// A final line terminator does not produce an extra empty line, and an
// empty document has no lines.
func Lines(doc string) []string {
	if doc == "" {
		return nil
	}
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	doc = strings.TrimSuffix(doc, "\n")
	return strings.Split(doc, "\n")
}

// Parse splits a document into lines and classifies them.
func Parse(doc string) []Line { return Classify(Lines(doc)) }

// Classify maps raw lines onto the script markup. It never fails: markup it
// does not understand is kept as literal text.
func Classify(raw []string) []Line {
	out := make([]Line, 0, len(raw))
	for _, r := range raw {
		out = append(out, ClassifyLine(r))
	}
	return out
}

// ClassifyLine classifies a single line. The heading check runs first, so a
// line such as "## host: x" is a Heading.
func ClassifyLine(raw string) Line {
	switch {
	case strings.HasPrefix(raw, headingMarker):
		return Line{Kind: Heading, Text: HeadingText(raw)}
	case isSpeakerCue(raw):
		return Line{Kind: SpeakerCue, Text: raw}
	default:
		return Line{Kind: Body, Text: raw, Spans: SplitSpans(raw)}
	}
}

// HeadingText derives the display text of a heading line.
func HeadingText(raw string) string {
	t := strings.TrimSpace(strings.TrimPrefix(raw, headingMarker))
	t = reTrailingParen.ReplaceAllString(t, "")
	return TitleLabel + t
}

func isSpeakerCue(raw string) bool {
	return len(raw) >= len(speakerLabel) && strings.EqualFold(raw[:len(speakerLabel)], speakerLabel)
}

// SplitSpans scans s left to right for non-overlapping "**...**" pairs.
// Unpaired markers stay in the plain text. Empty spans are dropped and
// neighbours with the same emphasis are merged, so the result is canonical.
func SplitSpans(s string) []Span {
	var spans []Span
	add := func(text string, emph bool) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Emphasis == emph {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, Span{Text: text, Emphasis: emph})
	}
	pos := 0
	for _, m := range reEmphasis.FindAllStringIndex(s, -1) {
		add(s[pos:m[0]], false)
		add(s[m[0]+len(emphasisMark):m[1]-len(emphasisMark)], true)
		pos = m[1]
	}
	add(s[pos:], false)
	return spans
}

// JoinSpans turns spans back into markup, wrapping emphasized runs in "**".
func JoinSpans(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		if sp.Emphasis {
			b.WriteString(emphasisMark)
			b.WriteString(sp.Text)
			b.WriteString(emphasisMark)
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}
