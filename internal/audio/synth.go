/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "scriptcast/internal/log"
)

// ErrEmptyText reports synthesis input that is empty or whitespace-only.
var ErrEmptyText = errors.New("text input is empty")

// SynthesisError is returned when both engines fail. It carries both causes
// so the operator can see why neither path worked.
type SynthesisError struct {
	Primary     string
	PrimaryErr  error
	Fallback    string
	FallbackErr error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed. %s: %v, %s: %v",
		e.Primary, e.PrimaryErr, e.Fallback, e.FallbackErr)
}

// Synthesizer runs a primary engine with a fallback. A nil Fallback means
// a primary failure is final.
type Synthesizer struct {
	Primary  Engine
	Fallback Engine
}

// NewSynthesizer builds the standard chain: offline espeak-ng first, the
// HTTP service second. fallbackURL may be empty, which disables the
// fallback entirely.
func NewSynthesizer(voice string, rate int, fallbackURL, token string) *Synthesizer {
	s := &Synthesizer{Primary: &ESpeakEngine{Voice: voice, Rate: rate}}
	if fallbackURL != "" {
		s.Fallback = &HTTPEngine{URL: fallbackURL, Token: token}
	}
	return s
}

// Synthesize produces a WAV file at outPath for the given text and applies
// loudness normalization. Normalization failures are logged, never fatal.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	l := applog.WithComponent("audio")
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audio dir %s: %w", dir, err)
		}
	}

	primaryErr := s.Primary.Synthesize(ctx, text, outPath)
	if primaryErr == nil {
		s.finish(l, s.Primary, outPath)
		return nil
	}
	if s.Fallback == nil {
		return fmt.Errorf("speech synthesis failed. %s: %w", s.Primary.Name(), primaryErr)
	}

	l.Warn("primary engine failed, trying fallback",
		slog.String("primary", s.Primary.Name()),
		slog.String("fallback", s.Fallback.Name()),
		slog.Any("err", primaryErr),
	)
	if fallbackErr := s.Fallback.Synthesize(ctx, text, outPath); fallbackErr != nil {
		return &SynthesisError{
			Primary:     s.Primary.Name(),
			PrimaryErr:  primaryErr,
			Fallback:    s.Fallback.Name(),
			FallbackErr: fallbackErr,
		}
	}
	s.finish(l, s.Fallback, outPath)
	return nil
}

func (s *Synthesizer) finish(l *slog.Logger, used Engine, outPath string) {
	if err := Normalize(outPath); err != nil {
		l.Warn("audio normalization failed, keeping original",
			slog.String("path", outPath),
			slog.Any("err", err),
		)
	}
	l.Info("narration synthesized",
		slog.String("engine", used.Name()),
		slog.String("path", outPath),
	)
}
