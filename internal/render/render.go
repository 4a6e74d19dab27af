/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render generates the per-scene placeholder frame sequences.
//
// For every scene it renders (or reuses) one base image and replicates it
// across the scene's frame count. The cache key is a content hash of the
// scene's first visual prompt only; the cache lives at <out_dir>/.cache as
// flat <hash>.png files plus a best-effort SQLite index. Entries are never
// evicted.
package render

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"scriptcast/internal/domain"
	applog "scriptcast/internal/log"
	"scriptcast/internal/storage"
)

// DefaultSceneDuration is assumed when a scene carries no duration hint.
const DefaultSceneDuration = 2.0

// ErrNoScenes reports a document with nothing to render.
var ErrNoScenes = errors.New("no scenes to render")

// Frames renders all scenes of doc into outDir, one subdirectory per
// scene_id containing frame_000001.png .. frame_NNNNNN.png where
// N = max(1, floor(duration*fps)).
func Frames(doc domain.Document, outDir string, fps int) error {
	l := applog.WithComponent("render")
	if len(doc.Scenes) == 0 {
		return ErrNoScenes
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create frames dir %s: %w", outDir, err)
	}

	cacheDir := filepath.Join(outDir, storage.CacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", cacheDir, err)
	}
	// The index is derived data: failure to open it degrades to rendering
	// without bookkeeping, never to a render failure.
	ix, err := storage.OpenCacheIndex(cacheDir)
	if err != nil {
		l.Warn("cache index unavailable", slog.Any("err", err))
		ix = nil
	}
	defer func() { _ = ix.Close() }()

	for _, sc := range doc.Scenes {
		if err := renderScene(sc, outDir, cacheDir, fps, ix, l); err != nil {
			return err
		}
	}
	return nil
}

func renderScene(sc domain.Scene, outDir, cacheDir string, fps int, ix *storage.CacheIndex, l *slog.Logger) error {
	sceneDir := filepath.Join(outDir, sc.SceneID)
	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		return fmt.Errorf("create scene dir %s: %w", sceneDir, err)
	}

	numFrames := frameCount(sc.Duration(DefaultSceneDuration), fps)

	prompt := sc.PrimaryPrompt()
	if prompt == "" {
		prompt = sc.Description
		if prompt == "" {
			prompt = "Scene"
		}
	}

	key := CacheKey(prompt)
	cachePath := filepath.Join(cacheDir, key+".png")

	base, err := os.ReadFile(cachePath)
	switch {
	case err == nil:
		if ierr := ix.RecordHit(key); ierr != nil {
			l.Warn("cache index hit update failed", slog.Any("err", ierr))
		}
		l.Debug("cache hit", slog.String("scene", sc.SceneID), slog.String("key", key))
	case os.IsNotExist(err):
		var buf bytes.Buffer
		if eerr := png.Encode(&buf, renderPlaceholder(prompt, sc)); eerr != nil {
			return fmt.Errorf("encode frame for %s: %w", sc.SceneID, eerr)
		}
		base = buf.Bytes()
		if werr := writeCacheEntry(cachePath, base); werr != nil {
			return fmt.Errorf("write cache entry %s: %w", cachePath, werr)
		}
		if ierr := ix.RecordMiss(key, prompt, int64(len(base))); ierr != nil {
			l.Warn("cache index insert failed", slog.Any("err", ierr))
		}
		l.Debug("cache miss", slog.String("scene", sc.SceneID), slog.String("key", key))
	default:
		return fmt.Errorf("read cache entry %s: %w", cachePath, err)
	}

	for i := 1; i <= numFrames; i++ {
		framePath := filepath.Join(sceneDir, fmt.Sprintf("frame_%06d.png", i))
		if err := os.WriteFile(framePath, base, 0o644); err != nil {
			return fmt.Errorf("write frame %s: %w", framePath, err)
		}
	}
	l.Info("scene rendered",
		slog.String("scene", sc.SceneID),
		slog.Int("frames", numFrames),
	)
	return nil
}

// frameCount computes max(1, floor(duration*fps)).
func frameCount(duration float64, fps int) int {
	n := int(duration * float64(fps))
	if n < 1 {
		return 1
	}
	return n
}

// CacheKey hashes a visual prompt into the cache file stem.
func CacheKey(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// writeCacheEntry creates the cache file only if the key is not already
// present; an existing entry is never overwritten (first writer wins).
func writeCacheEntry(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
