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
	"path/filepath"
	"testing"
	"time"
)

func exerciseJournal(t *testing.T, j *Journal, sceneName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := &Entry{Scene: sceneName, Kind: KindPoint, X: 25, Y: 25, Zoom: 1, PickDepth: 1, Result: []string{"x"}}
	if err := j.Record(ctx, first); err != nil {
		t.Fatalf("record point: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("record must fill ID and CreatedAt: %+v", first)
	}
	second := &Entry{Scene: sceneName, Kind: KindRegion, X: 0, Y: 0, W: 60, H: 60, Zoom: 2, IgnoreSelected: true, MaxLayer: 3,
		Result: []string{"x", "groupA"}}
	if err := j.Record(ctx, second); err != nil {
		t.Fatalf("record region: %v", err)
	}
	if err := j.Record(ctx, &Entry{Scene: sceneName + "-other", Kind: KindPoint, Zoom: 1}); err != nil {
		t.Fatalf("record other scene: %v", err)
	}
	if err := j.Record(ctx, &Entry{Scene: sceneName, Kind: "lasso"}); err == nil {
		t.Fatalf("unknown kind must be rejected")
	}

	got, err := j.List(ctx, sceneName, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != first.ID || got[0].PickDepth != 1 || len(got[0].Result) != 1 || got[0].Result[0] != "x" {
		t.Fatalf("first entry mismatch: %+v", got[0])
	}
	r := got[1]
	if r.Kind != KindRegion || r.W != 60 || !r.IgnoreSelected || r.MaxLayer != 3 || len(r.Result) != 2 {
		t.Fatalf("second entry mismatch: %+v", r)
	}
	limited, err := j.List(ctx, sceneName, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limited list: %d, %v", len(limited), err)
	}
}

func TestJournal_SQLite(t *testing.T) {
	path := JournalPath(filepath.Join(t.TempDir(), "nested"))
	j, err := OpenJournal(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()
	exerciseJournal(t, j, "demo")

	var schema int
	if err := j.DB().QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != journalSchemaVersion {
		t.Fatalf("schema = %d, want %d", schema, journalSchemaVersion)
	}
	var mode string
	if err := j.DB().QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	path := JournalPath(t.TempDir())
	ctx := context.Background()
	j, err := OpenJournal(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, &Entry{Scene: "s", Kind: KindPoint, Zoom: 1, Result: nil}); err != nil {
		t.Fatal(err)
	}
	_ = j.Close()

	j, err = OpenJournal(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.List(ctx, "s", 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen: %d entries, %v", len(got), err)
	}
	if got[0].Result == nil || len(got[0].Result) != 0 {
		t.Fatalf("empty result should round trip as an empty list, got %#v", got[0].Result)
	}
}

func TestJournal_MigratesUnlimitedMaxLayer(t *testing.T) {
	path := JournalPath(t.TempDir())
	ctx := context.Background()
	j, err := OpenJournal(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, &Entry{Scene: "s", Kind: KindPoint, Zoom: 1, MaxLayer: 0}); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, &Entry{Scene: "s", Kind: KindPoint, Zoom: 1, MaxLayer: 2}); err != nil {
		t.Fatal(err)
	}
	// Pretend the rows were written by a schema 2 build.
	if _, err := j.DB().Exec(`UPDATE version SET schema=2 WHERE id=1`); err != nil {
		t.Fatal(err)
	}
	_ = j.Close()

	j, err = OpenJournal(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.List(ctx, "s", 0)
	if err != nil || len(got) != 2 {
		t.Fatalf("list: %d entries, %v", len(got), err)
	}
	if got[0].MaxLayer != -1 || got[1].MaxLayer != 2 {
		t.Fatalf("max_layer after migration = %d, %d; want -1, 2", got[0].MaxLayer, got[1].MaxLayer)
	}
}

func TestRebind(t *testing.T) {
	q := `UPDATE version SET app=?, updated_at=? WHERE id=1`
	if got := dialectSQLite.rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := dialectPostgres.rebind(q); got != `UPDATE version SET app=$1, updated_at=$2 WHERE id=1` {
		t.Fatalf("postgres rebind = %s", got)
	}
	if !IsPostgresDSN("postgresql://u@h/db") || IsPostgresDSN("/tmp/journal.sqlite") {
		t.Fatalf("IsPostgresDSN misclassifies")
	}
}

// TestJournal_Postgres runs against SPK_PG_DSN when a server is reachable.
func TestJournal_Postgres(t *testing.T) {
	dsn := os.Getenv("SPK_PG_DSN")
	if dsn == "" {
		t.Skip("SPK_PG_DSN not set; skipping postgres journal test")
	}
	j, err := OpenJournal(context.Background(), dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer j.Close()
	sceneName := "pg-test-" + time.Now().UTC().Format("20060102150405.000000000")
	exerciseJournal(t, j, sceneName)
	_, _ = j.DB().Exec(`DELETE FROM picks WHERE scene LIKE $1`, sceneName+"%")
}
