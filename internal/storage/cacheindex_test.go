/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheIndexRecordAndStats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), CacheDirName)
	ix, err := OpenCacheIndex(dir)
	if err != nil {
		t.Fatalf("OpenCacheIndex error: %v", err)
	}
	defer func() { _ = ix.Close() }()

	if err := ix.RecordMiss("abc123", "a quiet street", 1024); err != nil {
		t.Fatalf("RecordMiss: %v", err)
	}
	// First writer wins: a second miss for the same key must not error or overwrite.
	if err := ix.RecordMiss("abc123", "different prompt", 99); err != nil {
		t.Fatalf("RecordMiss duplicate: %v", err)
	}
	if err := ix.RecordHit("abc123"); err != nil {
		t.Fatalf("RecordHit: %v", err)
	}
	if err := ix.RecordHit("abc123"); err != nil {
		t.Fatalf("RecordHit: %v", err)
	}

	st, err := ix.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Entries != 1 || st.Hits != 2 {
		t.Fatalf("stats = %+v, want 1 entry / 2 hits", st)
	}

	if _, err := os.Stat(IndexPath(dir)); err != nil {
		t.Fatalf("index database missing: %v", err)
	}
}

func TestCacheIndexNilSafety(t *testing.T) {
	var ix *CacheIndex
	if err := ix.RecordMiss("h", "p", 0); err != nil {
		t.Fatalf("nil RecordMiss: %v", err)
	}
	if err := ix.RecordHit("h"); err != nil {
		t.Fatalf("nil RecordHit: %v", err)
	}
	if st, err := ix.Stats(); err != nil || st.Entries != 0 {
		t.Fatalf("nil Stats = %+v, %v", st, err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
