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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "shakespeare/internal/log"
	"shakespeare/internal/version"

	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// FileName is the SQLite database file created under the data directory.
	FileName = "history.sqlite"

	schemaVersion = 1
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

type dialect int

const (
	sqlite dialect = iota
	postgres
)

// Store is the generation history.
type Store struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// IsPostgres reports whether dsn selects the PostgreSQL backend.
func IsPostgres(dsn string) bool {
	d := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// Path returns the SQLite file location for a data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Open connects to the history database and ensures its schema.
// An empty dsn opens <dataDir>/history.sqlite.
func Open(ctx context.Context, dsn, dataDir string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open")
	var (
		s   *Store
		err error
	)
	if IsPostgres(dsn) {
		s, err = openPostgres(ctx, dsn)
	} else {
		s, err = openSQLite(ctx, dsn, dataDir)
	}
	if err != nil {
		l.Error("open history failed", slog.Any("err", err))
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = s.db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	s.log = applog.WithComponent("storage")
	l.Info("history ready", slog.String("backend", s.Backend()))
	return s, nil
}

func openSQLite(ctx context.Context, dsn, dataDir string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		if strings.TrimSpace(dataDir) == "" {
			return nil, errors.New("data dir is required")
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(Path(dataDir)))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return &Store{db: db, dialect: sqlite}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db, dialect: postgres}, nil
}

// Backend names the database in use.
func (s *Store) Backend() string {
	if s.dialect == postgres {
		return "postgres"
	}
	return "sqlite"
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.dialect != postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scripts (
			id          ` + id + `,
			title       TEXT NOT NULL,
			script      TEXT NOT NULL,
			search_data TEXT NOT NULL,
			topic       TEXT NOT NULL,
			length      TEXT NOT NULL,
			audience    TEXT NOT NULL,
			creativity  DOUBLE PRECISION NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scripts_created ON scripts(created_at)`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`), schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := s.db.ExecContext(ctx, s.rebind(`UPDATE version SET app=?, updated_at=? WHERE id=1`), appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}
