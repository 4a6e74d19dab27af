/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// targetRMS16 is the normalization target for 16-bit samples, a safe and
// not too loud level. Other bit depths are scaled proportionally.
const targetRMS16 = 3000.0

// Normalize rewrites the WAV at path so its RMS loudness matches the
// target level. The sample count, channel layout, sample rate, and bit
// depth are preserved. Silent audio is left untouched.
func Normalize(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open wav: %w", err)
	}
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode wav: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	if err := f.Close(); err != nil {
		return err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil
	}

	var sumSquares float64
	for _, s := range buf.Data {
		sumSquares += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSquares / float64(len(buf.Data)))
	if rms == 0 {
		return nil
	}

	limit := float64(int64(1) << (bitDepth - 1))
	factor := targetRMS16 * (limit / 32768.0) / rms
	for i, s := range buf.Data {
		v := float64(s) * factor
		if v > limit-1 {
			v = limit - 1
		} else if v < -limit {
			v = -limit
		}
		buf.Data[i] = int(v)
	}

	tmp := path + ".norm.tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp wav: %w", err)
	}
	enc := wav.NewEncoder(out, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write normalized wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize normalized wav: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace wav: %w", err)
	}
	return nil
}
