// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout computes memorial page geometry: fitting a photo into its
// box, wrapping text to the line width, and stacking photo, heading and body
// so they never overlap. Coordinates are in points with the origin at the
// top-left corner of the page, y growing downward.
package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Fit scales an image of imgW×imgH by min(box.W/imgW, box.H/imgH) and centres
// the result in box. It returns the zero Rect for degenerate dimensions.
func Fit(box Rect, imgW, imgH float64) Rect {
	if imgW <= 0 || imgH <= 0 || box.W <= 0 || box.H <= 0 {
		return Rect{}
	}
	scale := math.Min(box.W/imgW, box.H/imgH)
	w := imgW * scale
	h := imgH * scale
	return Rect{
		X: box.X + (box.W-w)/2,
		Y: box.Y + (box.H-h)/2,
		W: w,
		H: h,
	}
}

// Measure returns the rendered width of s in the current font.
type Measure func(s string) float64

// Wrap breaks text into lines no wider than maxWidth, splitting at
// whitespace. A single word wider than maxWidth is split between runes.
// Empty or blank text yields no lines.
func Wrap(text string, maxWidth float64, measure Measure) []string {
	words := strings.Fields(text)
	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		if measure(word) <= maxWidth {
			line = word
			continue
		}
		pieces := breakWord(word, maxWidth, measure)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// breakWord splits word into runs that each fit maxWidth. Every run holds at
// least one rune so the loop always advances.
func breakWord(word string, maxWidth float64, measure Measure) []string {
	var pieces []string
	for word != "" {
		end := 0
		for i := range word {
			if i > 0 && measure(word[:i]) > maxWidth {
				break
			}
			end = i
		}
		if measure(word) <= maxWidth {
			end = len(word)
		}
		if end == 0 {
			_, size := utf8.DecodeRuneInString(word)
			end = size
		}
		pieces = append(pieces, word[:end])
		word = word[end:]
	}
	return pieces
}

// Page describes the sheet and its fixed geometry.
type Page struct {
	Width, Height float64

	// Margin applies on all four sides.
	Margin float64

	// MaxImageHeight caps the photo box height.
	MaxImageHeight float64

	// MinImageHeight is the smallest photo box worth drawing; below it the
	// photo is left out so the text still fits.
	MinImageHeight float64

	// Gap separates the photo box from the text below it.
	Gap float64
}

// ContentWidth returns the width available between the side margins.
func (p Page) ContentWidth() float64 {
	return p.Width - 2*p.Margin
}

// TextBlock is a run of wrapped lines sharing one line height.
type TextBlock struct {
	Lines      []string
	LineHeight float64

	// Style is carried through planning unchanged for the renderer.
	Style int
}

// Height returns the vertical space the block occupies.
func (b TextBlock) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

// Plan is the computed placement for one page.
type Plan struct {
	// HasImage is false when no photo was requested or no room was left for it.
	HasImage bool

	// ImageBox is the region the photo is fitted into.
	ImageBox Rect

	// TextTop is the y coordinate where the first text line starts.
	TextTop float64

	// Blocks are the text blocks to draw, possibly shortened to fit the page.
	Blocks []TextBlock

	// Truncated reports whether lines were dropped to fit the page.
	Truncated bool
}

// PlanPage stacks the photo box above the text blocks. Text height is
// measured first so the photo takes only the space the text leaves free.
// Without a photo the text is centred vertically.
func PlanPage(p Page, hasImage bool, blocks []TextBlock) Plan {
	avail := p.Height - 2*p.Margin
	blocks, truncated := clip(blocks, avail)
	textH := totalHeight(blocks)

	plan := Plan{Blocks: blocks, Truncated: truncated}

	if hasImage {
		boxH := math.Min(p.MaxImageHeight, avail-p.Gap-textH)
		if boxH >= p.MinImageHeight && boxH > 0 {
			plan.HasImage = true
			plan.ImageBox = Rect{X: p.Margin, Y: p.Margin, W: p.ContentWidth(), H: boxH}
			plan.TextTop = plan.ImageBox.Bottom() + p.Gap
			return plan
		}
	}

	plan.TextTop = math.Max(p.Margin, (p.Height-textH)/2)
	return plan
}

// clip drops trailing lines until the blocks fit within avail.
func clip(blocks []TextBlock, avail float64) ([]TextBlock, bool) {
	out := make([]TextBlock, 0, len(blocks))
	used := 0.0
	truncated := false
	for _, b := range blocks {
		kept := TextBlock{LineHeight: b.LineHeight, Style: b.Style}
		for _, line := range b.Lines {
			if used+b.LineHeight > avail {
				truncated = true
				break
			}
			kept.Lines = append(kept.Lines, line)
			used += b.LineHeight
		}
		if len(kept.Lines) > 0 {
			out = append(out, kept)
		}
		if truncated {
			break
		}
	}
	return out, truncated
}

func totalHeight(blocks []TextBlock) float64 {
	h := 0.0
	for _, b := range blocks {
		h += b.Height()
	}
	return h
}
