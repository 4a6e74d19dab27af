/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"

	"scriptcast/internal/domain"
	"scriptcast/internal/storage"
)

func scene(id, desc string, prompts []string, dur *float64) domain.Scene {
	return domain.Scene{
		SceneID:       id,
		Description:   desc,
		Characters:    []string{},
		Dialogue:      []domain.DialogueLine{},
		VisualPrompts: prompts,
		DurationHint:  dur,
	}
}

func TestFramesEmptyDocument(t *testing.T) {
	err := Frames(domain.Document{}, t.TempDir(), 24)
	if !errors.Is(err, ErrNoScenes) {
		t.Fatalf("Frames on empty document = %v, want ErrNoScenes", err)
	}
}

func TestFramesCountMatchesDurationAndFPS(t *testing.T) {
	dur := 2.0
	doc := domain.Document{Scenes: []domain.Scene{
		scene("scene_01", "A street", []string{"a quiet street"}, &dur),
	}}
	out := t.TempDir()
	if err := Frames(doc, out, 24); err != nil {
		t.Fatalf("Frames: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(out, "scene_01"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 48 {
		t.Fatalf("frame count = %d, want 48 (2.0s at 24fps)", len(entries))
	}
	if got := entries[0].Name(); got != "frame_000001.png" {
		t.Fatalf("first frame = %q, want frame_000001.png", got)
	}
	if got := entries[47].Name(); got != "frame_000048.png" {
		t.Fatalf("last frame = %q, want frame_000048.png", got)
	}
}

func TestFramesDefaultDurationAndMinimumOneFrame(t *testing.T) {
	tiny := 0.01
	doc := domain.Document{Scenes: []domain.Scene{
		scene("scene_01", "No hint", []string{"x"}, nil),
		scene("scene_02", "Tiny", []string{"y"}, &tiny),
	}}
	out := t.TempDir()
	if err := Frames(doc, out, 10); err != nil {
		t.Fatalf("Frames: %v", err)
	}
	// default 2.0s at 10fps
	if n := countFrames(t, filepath.Join(out, "scene_01")); n != 20 {
		t.Fatalf("scene_01 frames = %d, want 20", n)
	}
	// floor(0.01*10) = 0 is clamped to 1
	if n := countFrames(t, filepath.Join(out, "scene_02")); n != 1 {
		t.Fatalf("scene_02 frames = %d, want 1", n)
	}
}

func TestFramesSharedPromptUsesOneCacheEntry(t *testing.T) {
	dur := 0.1
	prompt := "interior cafe, morning light"
	doc := domain.Document{Scenes: []domain.Scene{
		scene("scene_01", "Cafe from outside", []string{prompt}, &dur),
		scene("scene_02", "Cafe from inside", []string{prompt, "a different angle"}, &dur),
	}}
	out := t.TempDir()
	if err := Frames(doc, out, 10); err != nil {
		t.Fatalf("Frames: %v", err)
	}

	cacheDir := filepath.Join(out, storage.CacheDirName)
	pngs, err := filepath.Glob(filepath.Join(cacheDir, "*.png"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(pngs) != 1 {
		t.Fatalf("cache entries = %d, want 1 (identical first prompt)", len(pngs))
	}

	base, err := os.ReadFile(pngs[0])
	if err != nil {
		t.Fatalf("read cache entry: %v", err)
	}
	for _, sc := range []string{"scene_01", "scene_02"} {
		frame, err := os.ReadFile(filepath.Join(out, sc, "frame_000001.png"))
		if err != nil {
			t.Fatalf("read frame of %s: %v", sc, err)
		}
		if !bytes.Equal(base, frame) {
			t.Fatalf("%s frame differs from cached base image", sc)
		}
	}

	ix, err := storage.OpenCacheIndex(cacheDir)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer func() { _ = ix.Close() }()
	st, err := ix.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Entries != 1 || st.Hits != 1 {
		t.Fatalf("index stats = %+v, want 1 entry / 1 hit", st)
	}
}

func TestFramesDistinctPromptsDistinctImages(t *testing.T) {
	dur := 0.1
	doc := domain.Document{Scenes: []domain.Scene{
		scene("scene_01", "Street", []string{"a quiet street"}, &dur),
		scene("scene_02", "Cafe", []string{"interior cafe"}, &dur),
	}}
	out := t.TempDir()
	if err := Frames(doc, out, 10); err != nil {
		t.Fatalf("Frames: %v", err)
	}
	a, err := os.ReadFile(filepath.Join(out, "scene_01", "frame_000001.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(out, "scene_02", "frame_000001.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("distinct prompts rendered identical frames")
	}
}

func TestCacheKeyIsStable(t *testing.T) {
	a := CacheKey("a quiet street")
	b := CacheKey("a quiet street")
	c := CacheKey("another street")
	if a != b {
		t.Fatalf("same prompt hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("distinct prompts collided: %s", a)
	}
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32 hex chars", len(a))
	}
}

func TestWrapTextKeepsWordsTogether(t *testing.T) {
	lines := wrapText(basicfont.Face7x13, "one two three four five six seven eight", 120)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, l := range lines {
		if l == "" {
			t.Fatalf("empty line in %v", lines)
		}
	}
}

func TestWrapTextDegenerateWidth(t *testing.T) {
	long := make([]rune, 80)
	for i := range long {
		long[i] = 'x'
	}
	lines := wrapText(basicfont.Face7x13, string(long), 1)
	if len(lines) == 0 {
		t.Fatalf("wrapText returned no lines")
	}
}

func countFrames(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir %s: %v", dir, err)
	}
	return len(entries)
}
