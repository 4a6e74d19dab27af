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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type fakeEngine struct {
	name    string
	err     error
	calls   int
	samples []int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Synthesize(_ context.Context, _, outPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	samples := f.samples
	if samples == nil {
		samples = sineSamples(800, 1000)
	}
	return writeTestWAV(outPath, samples, 16)
}

func sineSamples(n int, amplitude float64) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = int(amplitude * math.Sin(float64(i)*0.2))
	}
	return out
}

func writeTestWAV(path string, samples []int, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, 8000, bitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	s := &Synthesizer{Primary: &fakeEngine{name: "p"}}
	for _, text := range []string{"", "   ", "\t\n"} {
		err := s.Synthesize(context.Background(), text, filepath.Join(t.TempDir(), "out.wav"))
		if !errors.Is(err, ErrEmptyText) {
			t.Fatalf("Synthesize(%q) = %v, want ErrEmptyText", text, err)
		}
	}
}

func TestSynthesizePrimarySucceeds(t *testing.T) {
	primary := &fakeEngine{name: "p"}
	fallback := &fakeEngine{name: "f"}
	s := &Synthesizer{Primary: primary, Fallback: fallback}
	out := filepath.Join(t.TempDir(), "narration.wav")

	if err := s.Synthesize(context.Background(), "hello", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback invoked %d times despite primary success", fallback.calls)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestSynthesizeFallsBack(t *testing.T) {
	primary := &fakeEngine{name: "p", err: errors.New("no binary")}
	fallback := &fakeEngine{name: "f"}
	s := &Synthesizer{Primary: primary, Fallback: fallback}
	out := filepath.Join(t.TempDir(), "narration.wav")

	if err := s.Synthesize(context.Background(), "hello", out); err != nil {
		t.Fatalf("Synthesize with working fallback: %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("calls = primary %d / fallback %d, want 1 / 1", primary.calls, fallback.calls)
	}
}

func TestSynthesizeBothFail(t *testing.T) {
	s := &Synthesizer{
		Primary:  &fakeEngine{name: "espeak-ng", err: errors.New("no binary")},
		Fallback: &fakeEngine{name: "http-tts", err: errors.New("network down")},
	}
	err := s.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "out.wav"))
	var serr *SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("error type = %T (%v), want *SynthesisError", err, err)
	}
	msg := err.Error()
	for _, want := range []string{"espeak-ng", "no binary", "http-tts", "network down"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q is missing %q", msg, want)
		}
	}
}

func TestSynthesizeNoFallbackConfigured(t *testing.T) {
	cause := errors.New("no binary")
	s := &Synthesizer{Primary: &fakeEngine{name: "p", err: cause}}
	err := s.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want wrapped primary cause", err)
	}
}

func TestNewSynthesizerWithoutURLDisablesFallback(t *testing.T) {
	s := NewSynthesizer("en-us", 170, "", "")
	if s.Fallback != nil {
		t.Fatalf("empty URL must disable the fallback engine")
	}
	if e, ok := s.Primary.(*ESpeakEngine); !ok || e.Voice != "en-us" || e.Rate != 170 {
		t.Fatalf("primary = %#v, want espeak with voice/rate applied", s.Primary)
	}
}

func TestNormalizePreservesSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.wav")
	samples := sineSamples(500, 200)
	if err := writeTestWAV(path, samples, 16); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := Normalize(path); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("sample count changed: %d -> %d", len(samples), len(buf.Data))
	}

	var sum float64
	for _, s := range buf.Data {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(buf.Data)))
	if rms < 2500 || rms > 3500 {
		t.Fatalf("normalized RMS = %.0f, want near 3000", rms)
	}
}

func TestNormalizeLeavesSilenceAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := writeTestWAV(path, make([]int, 300), 16); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := Normalize(path); err != nil {
		t.Fatalf("Normalize silence: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("silent file was rewritten")
	}
}

func TestNormalizeRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("mp3 junk"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Normalize(path); err == nil {
		t.Fatalf("expected decode error for non-WAV input")
	}
}

func TestWAVDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	// 8000 samples at 8 kHz is exactly one second.
	if err := writeTestWAV(path, sineSamples(8000, 1000), 16); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	secs, err := wavDuration(path)
	if err != nil {
		t.Fatalf("wavDuration: %v", err)
	}
	if math.Abs(secs-1.0) > 0.01 {
		t.Fatalf("duration = %.3fs, want 1.0s", secs)
	}
}

func TestESpeakEngineMissingBinary(t *testing.T) {
	e := &ESpeakEngine{binary: "definitely-not-a-tts-binary"}
	err := e.Synthesize(context.Background(), "hi", filepath.Join(t.TempDir(), "out.wav"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error = %v, want missing binary report", err)
	}
}

func TestHTTPEngineRequiresURL(t *testing.T) {
	e := &HTTPEngine{}
	err := e.Synthesize(context.Background(), "hi", filepath.Join(t.TempDir(), "out.wav"))
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("error = %v, want missing endpoint report", err)
	}
}
