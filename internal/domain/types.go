/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data exchanged between the form, the generation
// pipeline, the history store and the renderer.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRequest wraps every field validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// NoSearchData is the search text used when the enrichment lookup found nothing.
const NoSearchData = "None"

// DefaultCreativity is the initial position of the creativity slider.
const DefaultCreativity = 0.5

// Length is the target video duration label.
type Length string

const (
	Length5  Length = "5 Mins"
	Length10 Length = "10 Mins"
	Length15 Length = "15 Mins"
	Length20 Length = "20 Mins"
)

// Lengths lists the selectable durations in display order.
func Lengths() []Length { return []Length{Length5, Length10, Length15, Length20} }

// ParseLength accepts a label ("10 Mins", case-insensitive) or a bare minute count ("10").
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	for _, l := range Lengths() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(s), "m")); err == nil {
		l := Length(strconv.Itoa(n) + " Mins")
		for _, known := range Lengths() {
			if l == known {
				return l, nil
			}
		}
	}
	return "", fmt.Errorf("%w: unknown length %q", ErrInvalidRequest, s)
}

// Audience is the target audience of the video.
type Audience string

const (
	Kids   Audience = "Kids"
	Teens  Audience = "Teens"
	Adults Audience = "Adults"
)

// Audiences lists the selectable audiences in display order.
func Audiences() []Audience { return []Audience{Kids, Teens, Adults} }

// ParseAudience matches an audience name case-insensitively.
func ParseAudience(s string) (Audience, error) {
	s = strings.TrimSpace(s)
	for _, a := range Audiences() {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown audience %q", ErrInvalidRequest, s)
}

// Request carries the form inputs for one generation.
// Credential is the LLM API key; it is never serialized.
type Request struct {
	Topic      string   `json:"topic"`
	Length     Length   `json:"length"`
	Audience   Audience `json:"audience"`
	Creativity float64  `json:"creativity"`
	Credential string   `json:"-"`
}

// Validate checks the fields that do not depend on the credential.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if _, err := ParseLength(string(r.Length)); err != nil {
		return err
	}
	if _, err := ParseAudience(string(r.Audience)); err != nil {
		return err
	}
	if r.Creativity < 0 || r.Creativity > 1 || r.Creativity != r.Creativity {
		return fmt.Errorf("%w: creativity %v outside [0,1]", ErrInvalidRequest, r.Creativity)
	}
	return nil
}

// Result is the output of the acquisition pipeline.
type Result struct {
	Title      string `json:"title"`
	Script     string `json:"script"`
	SearchData string `json:"search_data"`
}

// HasSearchData reports whether the enrichment lookup produced usable text.
func (r Result) HasSearchData() bool {
	return r.SearchData != "" && r.SearchData != NoSearchData
}

// Record is a stored generation.
type Record struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Script     string    `json:"script"`
	SearchData string    `json:"search_data"`
	Topic      string    `json:"topic"`
	Length     Length    `json:"length"`
	Audience   Audience  `json:"audience"`
	Creativity float64   `json:"creativity"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRecord combines a request and its result into a record ready to store.
func NewRecord(req Request, res Result, now time.Time) Record {
	return Record{
		Title:      res.Title,
		Script:     res.Script,
		SearchData: res.SearchData,
		Topic:      req.Topic,
		Length:     req.Length,
		Audience:   req.Audience,
		Creativity: req.Creativity,
		CreatedAt:  now.UTC(),
	}
}

// Result returns the generation output held by the record.
func (r Record) Result() Result {
	return Result{Title: r.Title, Script: r.Script, SearchData: r.SearchData}
}
