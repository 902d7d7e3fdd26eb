/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"testing"
)

func TestSecretKeyringAndEnvPrecedence(t *testing.T) {
	isolate(t)
	if err := SetSecret(KeyGemini, "  from-keyring  "); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	got, err := Secret(KeyGemini)
	if err != nil || got != "from-keyring" {
		t.Fatalf("Secret = %q, %v", got, err)
	}
	t.Setenv(EnvGeminiAPIKey, "from-env")
	if got, _ := Secret(KeyGemini); got != "from-env" {
		t.Fatalf("env should win, got %q", got)
	}
	_, sec, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sec.GeminiAPIKey != "from-env" || sec.SerperAPIKey != "" {
		t.Fatalf("secrets = %#v", sec)
	}
}

func TestDeleteSecret(t *testing.T) {
	isolate(t)
	if err := SetSecret(KeySerper, "s1"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	if err := DeleteSecret(KeySerper); err != nil {
		t.Fatalf("DeleteSecret: %v", err)
	}
	if got, err := Secret(KeySerper); err != nil || got != "" {
		t.Fatalf("after delete: %q, %v", got, err)
	}
	if err := DeleteSecret(KeySerper); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestUnknownSecretName(t *testing.T) {
	isolate(t)
	if err := SetSecret("nope", "x"); !errors.Is(err, ErrUnknownSecret) {
		t.Fatalf("expected ErrUnknownSecret, got %v", err)
	}
	if err := SetSecret(KeyGemini, "  "); err == nil {
		t.Fatalf("expected empty value error")
	}
}
