/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout holds the TrueType faces used to lay out rendered scripts.
package textlayout

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Face selects the weight of the script font.
type Face int

const (
	Regular Face = iota
	Bold
)

func (f Face) String() string {
	if f == Bold {
		return "bold"
	}
	return "regular"
}

// Style returns the gofpdf style string for the face.
func (f Face) Style() string {
	if f == Bold {
		return "B"
	}
	return ""
}

// FontLibrary stores the raw bytes of each face after checking that they
// parse as OpenType/TrueType. The bytes are what the PDF writer embeds.
type FontLibrary struct {
	faces map[Face]fontData
}

type fontData struct {
	source string
	data   []byte
	glyphs int
}

// ErrFaceMissing is returned by Validate when a face was never loaded.
var ErrFaceMissing = errors.New("font face not loaded")

func NewFontLibrary() *FontLibrary { return &FontLibrary{faces: make(map[Face]fontData)} }

// DefaultFonts returns a library backed by the Go fonts compiled into the binary.
func DefaultFonts() (*FontLibrary, error) {
	fl := NewFontLibrary()
	if err := fl.LoadBytes(Regular, "goregular", goregular.TTF); err != nil {
		return nil, err
	}
	if err := fl.LoadBytes(Bold, "gobold", gobold.TTF); err != nil {
		return nil, err
	}
	return fl, nil
}

// LoadFonts builds a library from TTF files. An empty path falls back to the
// embedded Go font for that face.
func LoadFonts(regularPath, boldPath string) (*FontLibrary, error) {
	fl, err := DefaultFonts()
	if err != nil {
		return nil, err
	}
	if regularPath != "" {
		if err := fl.LoadTTF(Regular, regularPath); err != nil {
			return nil, err
		}
	}
	if boldPath != "" {
		if err := fl.LoadTTF(Bold, boldPath); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

// LoadTTF loads a font file into the library under the given face.
func (fl *FontLibrary) LoadTTF(face Face, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.LoadBytes(face, path, data)
}

// LoadBytes parses data and stores it under face. source names the data in errors.
func (fl *FontLibrary) LoadBytes(face Face, source string, data []byte) error {
	if fl.faces == nil {
		fl.faces = make(map[Face]fontData)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", source, err)
	}
	fl.faces[face] = fontData{source: source, data: data, glyphs: f.NumGlyphs()}
	return nil
}

// Bytes returns the TTF data of face.
func (fl *FontLibrary) Bytes(face Face) ([]byte, bool) {
	if fl == nil {
		return nil, false
	}
	fd, ok := fl.faces[face]
	return fd.data, ok
}

// Source reports where face was loaded from.
func (fl *FontLibrary) Source(face Face) string {
	if fl == nil {
		return ""
	}
	return fl.faces[face].source
}

// Validate checks that both faces are present and non-empty.
func (fl *FontLibrary) Validate() error {
	for _, face := range []Face{Regular, Bold} {
		if fl == nil {
			return fmt.Errorf("%s: %w", face, ErrFaceMissing)
		}
		fd, ok := fl.faces[face]
		if !ok || len(fd.data) == 0 {
			return fmt.Errorf("%s: %w", face, ErrFaceMissing)
		}
		if fd.glyphs == 0 {
			return fmt.Errorf("%s font %s has no glyphs", face, fd.source)
		}
	}
	return nil
}
