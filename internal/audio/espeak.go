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
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const (
	espeakBinary = "espeak-ng"

	// DefaultRate is the speech rate in words per minute used when the
	// caller does not pick one.
	DefaultRate = 150
)

// ESpeakEngine drives the espeak-ng command line tool. It works fully
// offline, which is why it is the primary engine.
type ESpeakEngine struct {
	// Voice selects an espeak-ng voice, e.g. "en-us". Empty keeps the
	// tool's default.
	Voice string
	// Rate is the speech rate in words per minute; 0 means DefaultRate.
	Rate int

	// binary overrides the espeak-ng executable name, for tests.
	binary string
}

func (e *ESpeakEngine) Name() string { return "espeak-ng" }

func (e *ESpeakEngine) Synthesize(ctx context.Context, text, outPath string) error {
	bin := e.binary
	if bin == "" {
		bin = espeakBinary
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", bin, err)
	}

	rate := e.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	args := []string{"-s", strconv.Itoa(rate), "-w", outPath}
	if e.Voice != "" {
		args = append(args, "-v", e.Voice)
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	if fi, err := os.Stat(outPath); err != nil || fi.Size() == 0 {
		return fmt.Errorf("%s produced no output at %s", bin, outPath)
	}
	return nil
}
