/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export produces review artifacts from a parsed script.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"scriptcast/internal/domain"
	"scriptcast/internal/render"
)

// StoryboardOptions controls PDF storyboard layout. Units are points.
// Built-in Helvetica keeps text vector without embedding.
type StoryboardOptions struct {
	// Title appears on every page header; empty defaults to "Storyboard".
	Title string
	// FPS is used to show the computed frame count per scene; 0 hides it.
	FPS int
}

// Storyboard writes a one-page-per-scene PDF summary of the document:
// scene id, description, characters, dialogue, visual prompts, and timing.
func Storyboard(doc domain.Document, outPath string, opt StoryboardOptions) error {
	if len(doc.Scenes) == 0 {
		return fmt.Errorf("no scenes to export")
	}
	title := opt.Title
	if title == "" {
		title = "Storyboard"
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAuthor("ScriptCast", false)
	pageW, _ := pdf.GetPageSize()
	margin := 54.0
	textW := pageW - 2*margin
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)

	for _, sc := range doc.Scenes {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(textW, 24, fmt.Sprintf("%s — %s", title, sc.Title()), "", 1, "L", false, 0, "")
		pdf.SetDrawColor(100, 100, 150)
		pdf.SetLineWidth(1)
		x, y := pdf.GetXY()
		pdf.Line(x, y, x+textW, y)
		pdf.Ln(12)

		section(pdf, textW, "Description", sc.Description)

		timing := fmt.Sprintf("%.1f seconds", sc.Duration(render.DefaultSceneDuration))
		if sc.DurationHint == nil {
			timing += " (default)"
		}
		if opt.FPS > 0 {
			frames := int(sc.Duration(render.DefaultSceneDuration) * float64(opt.FPS))
			if frames < 1 {
				frames = 1
			}
			timing += fmt.Sprintf(", %d frames at %d fps", frames, opt.FPS)
		}
		section(pdf, textW, "Timing", timing)

		if len(sc.Characters) > 0 {
			section(pdf, textW, "Characters", strings.Join(sc.Characters, ", "))
		}
		if len(sc.Dialogue) > 0 {
			lines := make([]string, 0, len(sc.Dialogue))
			for _, d := range sc.Dialogue {
				lines = append(lines, fmt.Sprintf("%s: %s", d.Speaker, d.Text))
			}
			section(pdf, textW, "Dialogue", strings.Join(lines, "\n"))
		}
		if len(sc.VisualPrompts) > 0 {
			section(pdf, textW, "Visual prompts", "- "+strings.Join(sc.VisualPrompts, "\n- "))
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, width float64, heading, body string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 18, heading, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(width, 14, body, "", "L", false)
	pdf.Ln(8)
}
