/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestDefaultFontsValidate(t *testing.T) {
	fl, err := DefaultFonts()
	if err != nil {
		t.Fatalf("DefaultFonts: %v", err)
	}
	if err := fl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if b, ok := fl.Bytes(Bold); !ok || len(b) == 0 {
		t.Fatalf("bold face missing")
	}
	if fl.Source(Regular) != "goregular" {
		t.Fatalf("unexpected source: %q", fl.Source(Regular))
	}
}

func TestValidateReportsMissingFace(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadBytes(Regular, "goregular-as-regular", gobold.TTF); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if err := fl.Validate(); !errors.Is(err, ErrFaceMissing) {
		t.Fatalf("expected ErrFaceMissing, got %v", err)
	}
	var nilLib *FontLibrary
	if err := nilLib.Validate(); !errors.Is(err, ErrFaceMissing) {
		t.Fatalf("nil library: expected ErrFaceMissing, got %v", err)
	}
}

func TestLoadFontsFromDisk(t *testing.T) {
	dir := t.TempDir()
	bold := filepath.Join(dir, "bold.ttf")
	if err := os.WriteFile(bold, gobold.TTF, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fl, err := LoadFonts("", bold)
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	if fl.Source(Bold) != bold || fl.Source(Regular) != "goregular" {
		t.Fatalf("unexpected sources: %q / %q", fl.Source(Bold), fl.Source(Regular))
	}
}

func TestLoadFontsRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFonts(bad, ""); err == nil {
		t.Fatalf("expected parse error for garbage font")
	}
	if _, err := LoadFonts(filepath.Join(dir, "missing.ttf"), ""); err == nil {
		t.Fatalf("expected read error for missing font")
	}
}

func TestFaceStyle(t *testing.T) {
	if Regular.Style() != "" || Bold.Style() != "B" {
		t.Fatalf("unexpected styles")
	}
}
