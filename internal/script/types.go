/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// LineKind classifies one line of the script markup.
//
//	Heading:    "## text (optional parenthetical)"
//	SpeakerCue: "host: text" (prefix matched case-insensitively)
//	Body:       everything else, may carry **emphasis** spans
type LineKind int

const (
	Body LineKind = iota
	Heading
	SpeakerCue
)

func (k LineKind) String() string {
	switch k {
	case Heading:
		return "heading"
	case SpeakerCue:
		return "speaker_cue"
	default:
		return "body"
	}
}

// Span is a run of text sharing one emphasis state within a Body line.
type Span struct {
	Text     string
	Emphasis bool
}

// Line is a classified script line.
// Text is the display text: the "Title: ..." label for a Heading, the raw
// line for a SpeakerCue and for a Body. Spans is only set for Body lines.
type Line struct {
	Kind  LineKind
	Text  string
	Spans []Span
}
