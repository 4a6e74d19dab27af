/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script turns free-form script text into ordered scene records.
//
// The parser is a single forward pass over the input lines with one mutable
// "current scene" slot and a monotonically increasing scene counter. Each
// line is classified against the rules below, first match wins:
//
//  1. blank line            — finalize and close the open scene (separator)
//  2. "Scene N[:|-] title"  — close the open scene, open the next one
//  3. (no scene open)       — implicitly open a scene, then rules 4-8 apply
//  4. "Narration: text"     — overwrite description; first prompt if none yet
//  5. "Name: text"          — dialogue; speaker joins the character set
//  6. "Visual[:|-] text"    — append a visual prompt unconditionally
//  7. "Duration[:|-] N [s]" — set the duration hint, overwriting
//  8. anything else         — seed or extend the description (flowing prose)
//
// The rules are not mutually exclusive; the order is load-bearing. In
// particular the dialogue rule runs after the narration and marker rules so
// "Narration: ..." never registers a speaker called Narration, and the
// speaker pattern deliberately also matches capitalized sentence prefixes
// like "My Friend: that's odd" (see the parser tests).
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"scriptcast/internal/domain"
)

// Patterns. The dialogue pattern is intentionally case-sensitive and lazy in
// the speaker group; changing its shape changes which ambiguous lines become
// dialogue, so treat it as part of the wire contract.
var (
	reSceneMarker = regexp.MustCompile(`^(?i)Scene\s+(\d+)[:\-]?\s*(.*)$`)
	reNarration   = regexp.MustCompile(`^(?i)Narration:\s*(.+)$`)
	reDialogue    = regexp.MustCompile(`^([A-Z][A-Za-z\s]+?):\s*(.+)$`)
	reVisual      = regexp.MustCompile(`^(?i)Visual[:\-]?\s*(.+)$`)
	reDuration    = regexp.MustCompile(`^(?i)Duration[:\-]?\s*(\d+(?:\.\d+)?)\s*(?:seconds?|sec|s)?$`)
)

func sceneID(n int) string            { return fmt.Sprintf("scene_%02d", n) }
func sceneFallbackTitle(n int) string { return fmt.Sprintf("Scene %d", n) }

// Parse parses raw script text into finalized scenes.
// It fails with ErrEmptyInput when text is empty or all-whitespace and with
// ErrNoScenes when scanning ends without a single finalized scene.
func Parse(text string) ([]domain.Scene, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var scenes []domain.Scene
	var cur *sceneBuilder
	counter := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		// Rule 1: blank lines separate scenes.
		if line == "" {
			if cur != nil {
				scenes = append(scenes, cur.finalize())
				cur = nil
			}
			continue
		}

		// Rule 2: explicit scene marker. A marker closes the open scene even
		// without a preceding blank line. The authored number is cosmetic for
		// ids (those come from the internal counter) but it is the title
		// fallback when the marker carries no text of its own.
		if m := reSceneMarker.FindStringSubmatch(line); m != nil {
			if cur != nil {
				scenes = append(scenes, cur.finalize())
			}
			counter++
			title := strings.TrimSpace(m[2])
			if title == "" {
				if n, err := strconv.Atoi(m[1]); err == nil {
					title = sceneFallbackTitle(n)
				} else {
					title = sceneFallbackTitle(counter)
				}
			}
			cur = &sceneBuilder{num: counter, description: title}
			continue
		}

		// Rule 3: content before any marker implicitly opens a scene; the
		// line then falls through to rules 4-8.
		if cur == nil {
			counter++
			cur = &sceneBuilder{num: counter}
		}

		// Rule 4: narration overwrites any prior description and doubles as
		// the first visual prompt when no explicit prompt exists yet.
		if m := reNarration.FindStringSubmatch(line); m != nil {
			txt := strings.TrimSpace(m[1])
			cur.description = txt
			if len(cur.prompts) == 0 {
				cur.prompts = append(cur.prompts, txt)
			}
			continue
		}

		// Rule 5: dialogue.
		if m := reDialogue.FindStringSubmatch(line); m != nil {
			cur.addDialogue(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
			continue
		}

		// Rule 6: explicit visual prompt, appended unconditionally.
		if m := reVisual.FindStringSubmatch(line); m != nil {
			cur.prompts = append(cur.prompts, strings.TrimSpace(m[1]))
			continue
		}

		// Rule 7: duration hint, last one wins.
		if m := reDuration.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				cur.duration = &v
			}
			continue
		}

		// Rule 8: unmarked prose seeds the description or accumulates onto
		// it, space-joined.
		if cur.description == "" {
			cur.description = line
			if len(cur.prompts) == 0 {
				cur.prompts = append(cur.prompts, line)
			}
		} else {
			cur.description += " " + line
		}
	}

	if cur != nil {
		scenes = append(scenes, cur.finalize())
	}
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	return scenes, nil
}
