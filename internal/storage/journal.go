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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "scenepick/internal/log"
	"scenepick/internal/version"

	// Postgres driver registered as "pgx" for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	JournalFileName = "journal.sqlite"

	// journalSchemaVersion tracks the journal schema. Bump it together with a
	// new step in runMigrations.
	journalSchemaVersion = 3
)

// Entry kinds.
const (
	KindPoint  = "point"
	KindRegion = "region"
)

// Entry is one recorded pick query and its result, by node name.
type Entry struct {
	ID             int64
	Scene          string
	Kind           string
	X, Y, W, H     float64
	Zoom           float64
	PickDepth      int
	IgnoreSelected bool
	MaxLayer       int
	Result         []string
	CreatedAt      time.Time
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d dialect) rebind(q string) string {
	if d != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Journal records pick queries for later inspection and replay. It is backed
// by an embedded SQLite file or a shared Postgres database.
type Journal struct {
	db      *sql.DB
	dialect dialect
}

// IsPostgresDSN reports whether dsn selects the Postgres backend.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// JournalPath returns the default journal location inside dir.
func JournalPath(dir string) string { return filepath.Join(dir, JournalFileName) }

// OpenJournal opens or creates the journal at dsn, which is either a
// postgres:// URL or a SQLite file path, and brings its schema up to date.
func OpenJournal(ctx context.Context, dsn string) (*Journal, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("journal dsn is required")
	}
	j := &Journal{dialect: dialectSQLite}
	if IsPostgresDSN(dsn) {
		j.dialect = dialectPostgres
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "journal_open").With(
		slog.String("backend", j.dialect.String()),
	)

	var err error
	switch j.dialect {
	case dialectPostgres:
		j.db, err = sql.Open("pgx", dsn)
	default:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			l.Error("create journal dir failed", slog.Any("err", err))
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
		j.db, err = sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(dsn)))
		if err == nil {
			j.db.SetMaxOpenConns(1)
			j.db.SetMaxIdleConns(1)
		}
	}
	if err != nil {
		l.Error("journal open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open journal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := j.db.PingContext(ctx); err != nil {
		_ = j.db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if j.dialect == dialectSQLite {
		if _, err := j.db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = j.db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := j.ensureVersion(ctx); err != nil {
		_ = j.db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.ensureSchema(ctx); err != nil {
		_ = j.db.Close()
		l.Error("ensure journal schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.runMigrations(ctx); err != nil {
		_ = j.db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("journal ready")
	return j, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// DB exposes the underlying handle for maintenance and tests.
func (j *Journal) DB() *sql.DB { return j.db }

func (j *Journal) ensureVersion(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh journal starts at 1 and is migrated forward like any other.
		if _, err := j.db.ExecContext(ctx, j.dialect.rebind(`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`), appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := j.db.ExecContext(ctx, j.dialect.rebind(`UPDATE version SET app=?, updated_at=? WHERE id=1`), appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if j.dialect == dialectPostgres {
		idCol = "id BIGSERIAL PRIMARY KEY"
	}
	ddl := `CREATE TABLE IF NOT EXISTS picks (
			` + idCol + `,
			scene           TEXT NOT NULL,
			kind            TEXT NOT NULL,
			x               DOUBLE PRECISION NOT NULL,
			y               DOUBLE PRECISION NOT NULL,
			w               DOUBLE PRECISION NOT NULL DEFAULT 0,
			h               DOUBLE PRECISION NOT NULL DEFAULT 0,
			zoom            DOUBLE PRECISION NOT NULL,
			pick_depth      INTEGER NOT NULL DEFAULT 0,
			result          TEXT NOT NULL,
			created_at      TEXT NOT NULL
		)`
	if _, err := j.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create picks table: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations up to journalSchemaVersion.
func (j *Journal) runMigrations(ctx context.Context) error {
	var cur int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > journalSchemaVersion {
		// Written by a newer build; do not downgrade.
		return nil
	}
	for cur < journalSchemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// Query policy columns for faithful replay, plus the scene lookup index.
			stmts = []string{
				`ALTER TABLE picks ADD COLUMN ignore_selected INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE picks ADD COLUMN max_layer INTEGER NOT NULL DEFAULT 0`,
				`CREATE INDEX IF NOT EXISTS idx_picks_scene ON picks(scene, id)`,
			}
		case 3:
			// max_layer 0 used to mean unlimited; unlimited is now -1 and 0 is layer 0 only.
			stmts = []string{`UPDATE picks SET max_layer = -1 WHERE max_layer = 0`}
		}
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, j.dialect.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Record stores e and fills in its ID and, when unset, CreatedAt.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e == nil {
		return errors.New("nil journal entry")
	}
	if e.Scene == "" || (e.Kind != KindPoint && e.Kind != KindRegion) {
		return fmt.Errorf("invalid journal entry: scene=%q kind=%q", e.Scene, e.Kind)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	result := e.Result
	if result == nil {
		result = []string{}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	ignore := 0
	if e.IgnoreSelected {
		ignore = 1
	}
	q := j.dialect.rebind(`INSERT INTO picks (scene, kind, x, y, w, h, zoom, pick_depth, ignore_selected, max_layer, result, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := j.db.QueryRowContext(ctx, q, e.Scene, e.Kind, e.X, e.Y, e.W, e.H, e.Zoom, e.PickDepth, ignore, e.MaxLayer,
		string(raw), e.CreatedAt.UTC().Format(time.RFC3339Nano)).Scan(&e.ID); err != nil {
		return fmt.Errorf("insert pick: %w", err)
	}
	applog.WithOperation(applog.WithComponent("storage"), "journal_record").DebugContext(ctx, "pick recorded",
		slog.Int64("id", e.ID), slog.String("kind", e.Kind))
	return nil
}

// List returns the entries for sceneName, oldest first. A limit <= 0 returns all.
func (j *Journal) List(ctx context.Context, sceneName string, limit int) ([]Entry, error) {
	q := `SELECT id, scene, kind, x, y, w, h, zoom, pick_depth, ignore_selected, max_layer, result, created_at
		FROM picks WHERE scene = ? ORDER BY id`
	args := []any{sceneName}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, j.dialect.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			ignore  int
			raw     string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Scene, &e.Kind, &e.X, &e.Y, &e.W, &e.H, &e.Zoom, &e.PickDepth, &ignore, &e.MaxLayer, &raw, &created); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		e.IgnoreSelected = ignore != 0
		if err := json.Unmarshal([]byte(raw), &e.Result); err != nil {
			return nil, fmt.Errorf("decode result of pick %d: %w", e.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}
	return out, nil
}
