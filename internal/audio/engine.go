/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package audio turns narration text into a WAV file. A primary offline
// engine is tried first; if it fails, an online fallback engine takes over.
// Only when both fail does synthesis report an error, and that error names
// both causes.
package audio

import "context"

// Engine synthesizes speech for a piece of text into a WAV file at outPath.
type Engine interface {
	// Name identifies the engine in logs and error messages.
	Name() string
	Synthesize(ctx context.Context, text, outPath string) error
}

// DefaultNarration is spoken when a script yields no narration text at all,
// so the assembled video always has an audio track.
const DefaultNarration = "Scene narration."
