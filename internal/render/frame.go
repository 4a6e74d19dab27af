/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scriptcast/internal/domain"
)

// Placeholder frame geometry. The layout is deterministic: the same prompt
// and scene always produce the same pixels, which is what makes the
// prompt-hash cache sound.
const (
	frameWidth  = 1280
	frameHeight = 720
	textMargin  = 200
)

var (
	titleColor  = color.RGBA{255, 255, 255, 255}
	promptColor = color.RGBA{220, 220, 255, 255}
	descColor   = color.RGBA{180, 180, 200, 255}
	borderColor = color.RGBA{100, 100, 150, 255}
)

// renderPlaceholder draws the fallback frame for a scene: a dark vertical
// gradient, the scene title, the word-wrapped primary prompt in the middle,
// up to three description lines near the bottom, and a border.
func renderPlaceholder(prompt string, sc domain.Scene) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))

	// Background gradient, top to bottom.
	for y := 0; y < frameHeight; y++ {
		ratio := float64(y) / frameHeight
		c := color.RGBA{
			R: uint8(30 + ratio*20),
			G: uint8(30 + ratio*20),
			B: uint8(50 + ratio*30),
			A: 255,
		}
		for x := 0; x < frameWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	face := basicfont.Face7x13

	drawCentered(img, face, sc.Title(), 50, titleColor)

	promptLines := wrapText(face, prompt, frameWidth-textMargin)
	yStart := frameHeight/2 - (len(promptLines)*lineSpacing)/2
	for i, line := range promptLines {
		drawCentered(img, face, line, yStart+i*lineSpacing, promptColor)
	}

	if sc.Description != "" && sc.Description != prompt {
		descLines := wrapText(face, sc.Description, frameWidth-textMargin)
		if len(descLines) > 3 {
			descLines = descLines[:3]
		}
		yDesc := frameHeight - 100
		for i, line := range descLines {
			drawCentered(img, face, line, yDesc+i*descSpacing, descColor)
		}
	}

	strokeRect(img, 10, 10, frameWidth-10, frameHeight-10, 2, borderColor)
	return img
}

const (
	lineSpacing = 30
	descSpacing = 22
)

// drawCentered renders one line of text horizontally centered with its
// baseline adjusted so y is roughly the vertical middle of the glyphs.
func drawCentered(img *image.RGBA, face font.Face, text string, y int, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	w := d.MeasureString(text).Round()
	d.Dot = fixed.P((frameWidth-w)/2, y+face.Metrics().Ascent.Round()/2)
	d.DrawString(text)
}

// strokeRect draws an axis-aligned rectangle border of the given stroke
// width, inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, col color.RGBA) {
	for i := 0; i < width; i++ {
		for x := x0 + i; x <= x1-i; x++ {
			img.SetRGBA(x, y0+i, col)
			img.SetRGBA(x, y1-i, col)
		}
		for y := y0 + i; y <= y1-i; y++ {
			img.SetRGBA(x0+i, y, col)
			img.SetRGBA(x1-i, y, col)
		}
	}
}

// wrapText breaks text on spaces so each line's advance stays within
// maxWidth. A single overlong word gets its own line. The degenerate case
// returns a 50-rune prefix so callers always get at least one line.
func wrapText(face font.Face, text string, maxWidth int) []string {
	d := &font.Drawer{Face: face}
	var lines []string
	var cur []string
	for _, word := range strings.Fields(text) {
		test := word
		if len(cur) > 0 {
			test = strings.Join(cur, " ") + " " + word
		}
		if d.MeasureString(test).Round() <= maxWidth {
			cur = append(cur, word)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
		}
		cur = []string{word}
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	if len(lines) == 0 {
		r := []rune(text)
		if len(r) > 50 {
			r = r[:50]
		}
		lines = []string{string(r)}
	}
	return lines
}
