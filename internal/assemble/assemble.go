/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assemble muxes a rendered frame tree and a narration track into
// one video file with ffmpeg.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "image/jpeg"

	applog "scriptcast/internal/log"
)

var (
	// ErrNoFrames reports a frame directory without a single image.
	ErrNoFrames = errors.New("no image frames found")
	// ErrMissingTool reports an absent external muxing binary.
	ErrMissingTool = errors.New("ffmpeg not found in PATH")
)

// Video collects every image under framesDir (recursively, case-insensitive
// .png/.jpg/.jpeg), orders them lexicographically by full path, re-encodes
// them into a contiguous scratch sequence, and muxes them with audioFile
// into outPath. The final file appears only on success.
//
// Ordering relies on the renderer's zero-padded scene and frame numbering;
// dot-directories such as the render cache are skipped.
func Video(ctx context.Context, framesDir, audioFile, outPath string, fps int) error {
	l := applog.WithComponent("assemble")

	frames, err := collectFrames(framesDir)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFrames, framesDir)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrMissingTool
	}

	scratch, err := os.MkdirTemp("", "scriptcast-frames-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	for i, src := range frames {
		dst := filepath.Join(scratch, fmt.Sprintf("frame_%06d.png", i+1))
		if err := reencodePNG(src, dst); err != nil {
			return fmt.Errorf("re-encode %s: %w", src, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmpOut := filepath.Join(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp")
	defer func() { _ = os.Remove(tmpOut) }()

	args := []string{"-y", "-r", strconv.Itoa(fps), "-i", filepath.Join(scratch, "frame_%06d.png")}
	if audioFile != "" {
		args = append(args, "-i", audioFile, "-c:a", "aac")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-f", containerFormat(outPath),
		tmpOut,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if lines := strings.Split(msg, "\n"); len(lines) > 0 {
			msg = strings.TrimSpace(lines[len(lines)-1])
		}
		if msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}

	if err := os.Rename(tmpOut, outPath); err != nil {
		return fmt.Errorf("commit video %s: %w", outPath, err)
	}
	l.Info("video assembled",
		slog.String("path", outPath),
		slog.Int("frames", len(frames)),
		slog.Int("fps", fps),
	)
	return nil
}

// collectFrames walks framesDir and returns the sorted full paths of all
// image files. Hidden directories are skipped deliberately: the render
// cache lives at <framesDir>/.cache and its base images would sort ahead
// of every scene_NN directory, breaking the scene-then-frame ordering the
// lexical sort is meant to produce.
func collectFrames(framesDir string) ([]string, error) {
	var frames []string
	err := filepath.WalkDir(framesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != framesDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".png", ".jpg", ".jpeg":
			frames = append(frames, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan frames in %s: %w", framesDir, err)
	}
	sort.Strings(frames)
	return frames, nil
}

// reencodePNG decodes any supported image and writes it back as PNG so the
// scratch sequence is homogeneous regardless of source format.
func reencodePNG(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(in)
	_ = in.Close()
	if err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// containerFormat maps the output extension to an ffmpeg muxer name so the
// hidden temp file's extension does not confuse format detection.
func containerFormat(outPath string) string {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".webm":
		return "webm"
	case ".mkv":
		return "matroska"
	default:
		return "mp4"
	}
}
