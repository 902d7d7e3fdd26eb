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
	"strings"
	"time"

	"shakespeare/internal/domain"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

const selectRecord = `SELECT id, title, script, search_data, topic, length, audience, creativity, created_at FROM scripts`

// Save inserts rec and returns it with its assigned id.
func (s *Store) Save(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	args := []any{rec.Title, rec.Script, rec.SearchData, rec.Topic, string(rec.Length), string(rec.Audience), rec.Creativity, rec.CreatedAt.UTC().Format(time.RFC3339Nano)}
	q := `INSERT INTO scripts (title, script, search_data, topic, length, audience, creativity, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if s.dialect == postgres {
		if err := s.db.QueryRowContext(ctx, s.rebind(q+" RETURNING id"), args...).Scan(&rec.ID); err != nil {
			return domain.Record{}, fmt.Errorf("insert script: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return domain.Record{}, fmt.Errorf("insert script: %w", err)
		}
		if rec.ID, err = res.LastInsertId(); err != nil {
			return domain.Record{}, fmt.Errorf("insert script id: %w", err)
		}
	}
	s.log.Debug("script saved", slog.Int64("id", rec.ID))
	return rec, nil
}

// Get returns one record or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectRecord+` WHERE id = ?`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, err
}

// Query filters the history. Text matches title, topic, or script
// case-insensitively; an empty Query lists everything newest first.
type Query struct {
	Text     string
	Audience domain.Audience
	// Limit is clamped to [1, MaxListLimit]; zero means DefaultListLimit.
	Limit  int
	Offset int
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]domain.Record, error) {
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(selectRecord + ` WHERE 1=1`)
	if t := strings.ToLower(strings.TrimSpace(q.Text)); t != "" {
		pat := "%" + likeEscaper.Replace(t) + "%"
		b.WriteString(` AND (lower(title) LIKE ? ESCAPE '\' OR lower(topic) LIKE ? ESCAPE '\' OR lower(script) LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat)
	}
	if q.Audience != "" {
		b.WriteString(` AND audience = ?`)
		args = append(args, string(q.Audience))
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, max(q.Offset, 0))

	rows, err := s.db.QueryContext(ctx, s.rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (domain.Record, error) {
	var (
		rec      domain.Record
		length   string
		audience string
		created  string
	)
	if err := sc.Scan(&rec.ID, &rec.Title, &rec.Script, &rec.SearchData, &rec.Topic, &length, &audience, &rec.Creativity, &created); err != nil {
		return domain.Record{}, err
	}
	rec.Length = domain.Length(length)
	rec.Audience = domain.Audience(audience)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	rec.CreatedAt = t
	return rec, nil
}
