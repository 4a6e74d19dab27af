/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"

	"scriptcast/internal/domain"
)

// Parse failure modes. The empty-input check runs before scanning, so an
// all-whitespace script reports ErrEmptyInput, never ErrNoScenes.
var (
	ErrEmptyInput = errors.New("script text is empty or contains only whitespace")
	ErrNoScenes   = errors.New("no scenes found in script; script must contain at least one scene")
)

// sceneBuilder accumulates the mutable state of the one open scene.
// num is the value of the scene counter when the scene was opened; it feeds
// both the scene_NN id and the description/title fallbacks.
type sceneBuilder struct {
	num         int
	description string
	characters  []string
	dialogue    []domain.DialogueLine
	prompts     []string
	duration    *float64
}

func (b *sceneBuilder) addDialogue(speaker, text string) {
	known := false
	for _, c := range b.characters {
		if c == speaker {
			known = true
			break
		}
	}
	if !known {
		b.characters = append(b.characters, speaker)
	}
	b.dialogue = append(b.dialogue, domain.DialogueLine{Speaker: speaker, Text: text})
}

// finalize fills defaults and produces the immutable scene record.
// Characters and dialogue are forced to empty (non-nil) slices so the JSON
// form stays [] instead of null.
func (b *sceneBuilder) finalize() domain.Scene {
	desc := b.description
	if desc == "" {
		desc = sceneFallbackTitle(b.num)
	}
	prompts := b.prompts
	if len(prompts) == 0 {
		prompts = []string{desc}
	}
	chars := b.characters
	if chars == nil {
		chars = []string{}
	}
	dlg := b.dialogue
	if dlg == nil {
		dlg = []domain.DialogueLine{}
	}
	return domain.Scene{
		SceneID:       sceneID(b.num),
		Description:   desc,
		Characters:    chars,
		Dialogue:      dlg,
		VisualPrompts: prompts,
		DurationHint:  b.duration,
	}
}
