/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model shared by all pipeline stages.
// The canonical on-disk form is scenes.json: {"scenes": [...]} with optional
// fields omitted entirely rather than serialized as null.
package domain

import "strings"

// Document is the parser output and the input to every downstream stage.
type Document struct {
	Scenes []Scene `json:"scenes"`
}

// Scene is one finalized scene record.
// SceneID is assigned from the parser's internal counter as scene_NN,
// regardless of the number the author wrote in the scene marker.
// StartCue and DurationHint are pointers so an unset value disappears from
// the JSON instead of appearing as null.
type Scene struct {
	SceneID       string         `json:"scene_id"`
	StartCue      *string        `json:"start_cue,omitempty"`
	Description   string         `json:"description"`
	Characters    []string       `json:"characters"`
	Dialogue      []DialogueLine `json:"dialogue"`
	VisualPrompts []string       `json:"visual_prompts"`
	DurationHint  *float64       `json:"duration_hint,omitempty"`
}

// DialogueLine is a single spoken line, in input order.
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Duration returns the authored duration hint or def when unset.
func (s Scene) Duration(def float64) float64 {
	if s.DurationHint != nil {
		return *s.DurationHint
	}
	return def
}

// PrimaryPrompt returns the first visual prompt. Finalized scenes always
// carry at least one prompt; the empty return only happens on hand-built
// records.
func (s Scene) PrimaryPrompt() string {
	if len(s.VisualPrompts) > 0 {
		return s.VisualPrompts[0]
	}
	return ""
}

// Title derives a display title from the scene id (SCENE 01 from scene_01).
func (s Scene) Title() string {
	return strings.ToUpper(strings.ReplaceAll(s.SceneID, "_", " "))
}

// NarrationText concatenates everything the synthesizer should speak, in
// scene order: each scene's description followed by its dialogue lines as
// "Speaker says: text" (bare text when the speaker is missing), joined
// with ". ".
func (d Document) NarrationText() string {
	var parts []string
	for _, sc := range d.Scenes {
		if sc.Description != "" {
			parts = append(parts, sc.Description)
		}
		for _, dl := range sc.Dialogue {
			switch {
			case dl.Speaker != "" && dl.Text != "":
				parts = append(parts, dl.Speaker+" says: "+dl.Text)
			case dl.Text != "":
				parts = append(parts, dl.Text)
			}
		}
	}
	return strings.Join(parts, ". ")
}
