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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"
)

// HTTPEngine is the online fallback. It posts the text to a TTS service
// that answers with MP3 audio, then converts the MP3 to mono 16-bit WAV
// via ffmpeg so downstream processing sees one format.
type HTTPEngine struct {
	// URL of the TTS endpoint. Required.
	URL string
	// Token, when set, is sent as a bearer token.
	Token string
	// Client defaults to an http.Client with a 30 second timeout.
	Client *http.Client

	// ffmpegBinary overrides the converter executable, for tests.
	ffmpegBinary string
}

func (e *HTTPEngine) Name() string { return "http-tts" }

func (e *HTTPEngine) Synthesize(ctx context.Context, text, outPath string) error {
	if e.URL == "" {
		return fmt.Errorf("tts endpoint not configured")
	}

	form := url.Values{"text": {text}, "format": {"mp3"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}

	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts service returned %s", resp.Status)
	}

	mp3Path := outPath + ".mp3"
	if err := saveBody(mp3Path, resp.Body); err != nil {
		return fmt.Errorf("save tts response: %w", err)
	}
	defer func() { _ = os.Remove(mp3Path) }()

	if err := e.convertToWAV(ctx, mp3Path, outPath); err != nil {
		return err
	}
	return nil
}

func saveBody(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (e *HTTPEngine) convertToWAV(ctx context.Context, mp3Path, wavPath string) error {
	bin := e.ffmpegBinary
	if bin == "" {
		bin = "ffmpeg"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found, cannot convert MP3 to WAV: %w", bin, err)
	}
	cmd := exec.CommandContext(ctx, bin,
		"-y", "-i", mp3Path,
		"-acodec", "pcm_s16le", "-ar", "22050", "-ac", "1",
		wavPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("convert MP3 to WAV: %w: %s", err, lastLine(msg))
		}
		return fmt.Errorf("convert MP3 to WAV: %w", err)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
