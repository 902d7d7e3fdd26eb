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
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service/keys for OS keyring.
const (
	keyringService = "Shakespeare"
	KeyGemini      = "gemini_api_key"
	KeySerper      = "serper_api_key"
)

// ErrUnknownSecret is returned for a key name other than KeyGemini or KeySerper.
var ErrUnknownSecret = errors.New("unknown secret name")

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

func secretEnv(name string) (string, error) {
	switch name {
	case KeyGemini:
		return EnvGeminiAPIKey, nil
	case KeySerper:
		return EnvSerperAPIKey, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSecret, name)
}

// Secret resolves one key: the environment wins, then the keyring. A key that
// is stored nowhere yields "" and no error.
func Secret(name string) (string, error) {
	env, err := secretEnv(name)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, nil
	}
	v, err := tokenStore.Get(keyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetSecret stores a key in the OS keyring.
func SetSecret(name, value string) error {
	if _, err := secretEnv(name); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return tokenStore.Set(keyringService, name, strings.TrimSpace(value))
}

// DeleteSecret removes a key from the OS keyring. Deleting a missing key is not an error.
func DeleteSecret(name string) error {
	if _, err := secretEnv(name); err != nil {
		return err
	}
	if err := tokenStore.Delete(keyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// loadSecrets ignores keyring failures; a headless server usually has no keyring.
func loadSecrets() Secrets {
	g, _ := Secret(KeyGemini)
	s, _ := Secret(KeySerper)
	return Secrets{GeminiAPIKey: g, SerperAPIKey: s}
}
