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

	applog "scriptcast/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CacheDirName lives inside the render output directory; the name starts
	// with a dot so it can never collide with a scene_NN directory.
	CacheDirName  = ".cache"
	IndexFileName = "index.sqlite"
)

// CacheIndex tracks render-cache entries for one output directory. All
// methods are nil-safe no-ops so callers can carry a nil index when the
// database could not be opened.
type CacheIndex struct {
	db *sql.DB
}

// IndexPath returns the path of the cache index database inside cacheDir.
func IndexPath(cacheDir string) string {
	return filepath.Join(cacheDir, IndexFileName)
}

// OpenCacheIndex opens (creating if needed) the cache index for cacheDir,
// enables WAL mode, and ensures the schema exists.
func OpenCacheIndex(cacheDir string) (*CacheIndex, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "cache_index_open").With(
		slog.String("dir", cacheDir),
	)
	if strings.TrimSpace(cacheDir) == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(IndexPath(cacheDir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entries (
		hash        TEXT PRIMARY KEY,
		prompt      TEXT    NOT NULL,
		size        INTEGER NOT NULL DEFAULT 0,
		hits        INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT    NOT NULL,
		last_hit    TEXT
	);`); err != nil {
		_ = db.Close()
		l.Error("ensure entries table failed", slog.Any("err", err))
		return nil, fmt.Errorf("ensure entries table: %w", err)
	}
	return &CacheIndex{db: db}, nil
}

// RecordMiss registers a freshly rendered cache entry. An existing row is
// left untouched (first writer wins, matching the file cache contract).
func (ix *CacheIndex) RecordMiss(hash, prompt string, size int64) error {
	if ix == nil || ix.db == nil {
		return nil
	}
	_, err := ix.db.Exec(
		`INSERT OR IGNORE INTO entries(hash, prompt, size, hits, created_at) VALUES(?, ?, ?, 0, ?)`,
		hash, prompt, size, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RecordHit bumps the hit counter of an entry.
func (ix *CacheIndex) RecordHit(hash string) error {
	if ix == nil || ix.db == nil {
		return nil
	}
	_, err := ix.db.Exec(
		`UPDATE entries SET hits = hits + 1, last_hit = ? WHERE hash = ?`,
		time.Now().UTC().Format(time.RFC3339), hash,
	)
	return err
}

// CacheStats summarizes the index contents.
type CacheStats struct {
	Entries int
	Hits    int
}

// Stats returns entry and accumulated hit counts.
func (ix *CacheIndex) Stats() (CacheStats, error) {
	var st CacheStats
	if ix == nil || ix.db == nil {
		return st, nil
	}
	row := ix.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM entries`)
	if err := row.Scan(&st.Entries, &st.Hits); err != nil {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}

// Close releases the database handle.
func (ix *CacheIndex) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}
