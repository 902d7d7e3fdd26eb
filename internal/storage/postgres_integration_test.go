/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"testing"
	"time"
)

// Runs only when SHK_TEST_PG_DSN points at a disposable database.
func TestPostgresHistory(t *testing.T) {
	dsn := os.Getenv("SHK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SHK_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Backend() != "postgres" {
		t.Fatalf("backend = %s", s.Backend())
	}
	saved, err := s.Save(ctx, sampleRecord("PG", time.Now()))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, saved.ID)
	if err != nil || got.Title != "PG" {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	list, err := s.List(ctx, Query{Limit: 1, Text: "pg"})
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %d, %v", len(list), err)
	}
}
