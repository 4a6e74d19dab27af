/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pipeline chains the four stages into one run: parse the script,
// render frames, synthesize narration, assemble the video. Stages run
// sequentially; each must finish before the next starts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scriptcast/internal/assemble"
	"scriptcast/internal/audio"
	"scriptcast/internal/config"
	"scriptcast/internal/domain"
	applog "scriptcast/internal/log"
	"scriptcast/internal/render"
	"scriptcast/internal/script"
	"scriptcast/internal/storage"
	"scriptcast/internal/telemetry"
)

// Options configures a full pipeline run.
type Options struct {
	// FPS is the output frame rate; 0 means the configured default.
	FPS int
	// WorkDir keeps intermediate artifacts (scenes.json, frames, audio).
	// Empty means a temp dir that is removed after the run.
	WorkDir string
	// Speech carries voice, rate, and fallback settings.
	Speech config.SpeechConfig
	// SpeechToken authenticates against the fallback TTS service.
	SpeechToken string
}

// Run executes the whole pipeline for scriptPath and writes the final
// video to outPath. Intermediate artifacts live in a work directory and
// the final file appears only when assembly succeeds.
func Run(ctx context.Context, scriptPath, outPath string, opt Options) error {
	l := applog.WithComponent("pipeline")

	fps := opt.FPS
	if fps <= 0 {
		fps = config.Defaults().Pipeline.FPS
	}

	workDir := opt.WorkDir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "scriptcast-run-*")
		if err != nil {
			return fmt.Errorf("create work dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		workDir = tmp
	} else if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir %s: %w", workDir, err)
	}

	scenesPath := filepath.Join(workDir, storage.ScenesFileName)
	framesDir := filepath.Join(workDir, "frames")
	audioFile := filepath.Join(workDir, "audio.wav")

	l.Info("parsing script", slog.String("path", scriptPath))
	doc, err := script.ParseFile(scriptPath)
	if err != nil {
		return err
	}
	if err := storage.SaveScenes(scenesPath, doc); err != nil {
		return err
	}

	l.Info("rendering frames", slog.Int("scenes", len(doc.Scenes)), slog.Int("fps", fps))
	if err := render.Frames(doc, framesDir, fps); err != nil {
		return err
	}

	l.Info("synthesizing narration")
	text := doc.NarrationText()
	if strings.TrimSpace(text) == "" {
		text = audio.DefaultNarration
	}
	synth := audio.NewSynthesizer(opt.Speech.Voice, opt.Speech.Rate, opt.Speech.FallbackURL, opt.SpeechToken)
	if err := synth.Synthesize(ctx, text, audioFile); err != nil {
		return err
	}
	if secs, err := audio.Duration(ctx, audioFile); err == nil {
		l.Debug("narration ready", slog.Float64("seconds", secs))
	}

	l.Info("assembling video", slog.String("path", outPath))
	if err := assemble.Video(ctx, framesDir, audioFile, outPath, fps); err != nil {
		return err
	}

	telemetry.Event("pipeline_run", map[string]any{"scenes": len(doc.Scenes), "fps": fps})
	l.Info("pipeline complete", slog.String("output", outPath))
	return nil
}

// ParseToFile runs only the parser stage and writes scenes.json to outPath.
func ParseToFile(scriptPath, outPath string) (domain.Document, error) {
	doc, err := script.ParseFile(scriptPath)
	if err != nil {
		return domain.Document{}, err
	}
	if err := storage.SaveScenes(outPath, doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}
