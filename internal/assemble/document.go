// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/lambelambe/internal/layout"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const (
	pointsPerInch = 72.0

	// DefaultImageHeight is the maximum photo height in inches.
	DefaultImageHeight = 7.5

	coreFamily = "Helvetica"
	ttfFamily  = "memorial"
)

// Text styles, indexed by layout.TextBlock.Style.
const (
	styleHeading = iota
	styleDate
	styleItalic
	styleRegular
)

type textStyle struct {
	font       string
	size       float64
	lineHeight float64
}

// document wraps one fpdf document and the page geometry derived from the
// configured image height.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	page   layout.Page
	styles [4]textStyle
	images int
}

func newDocument(cfg types.AssemblyConfig, created time.Time) (*document, error) {
	h := cfg.ImageHeight
	if h <= 0 {
		h = DefaultImageHeight
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", SizeStr: "A4"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("lambelambe", true)
	pdf.SetCreationDate(created)

	width, height := pdf.GetPageSize()
	d := &document{
		pdf: pdf,
		page: layout.Page{
			Width:          width,
			Height:         height,
			Margin:         0.5 * pointsPerInch,
			MaxImageHeight: h * pointsPerInch,
			MinImageHeight: pointsPerInch,
			Gap:            h * 0.08 * pointsPerInch,
		},
	}

	heading := float64(int(h * 5.5))
	date := float64(int(h * 3.5))
	body := float64(int(h * 3.2))
	d.styles[styleHeading] = textStyle{"B", heading, heading * 1.3}
	d.styles[styleDate] = textStyle{"", date, date * 1.3}
	d.styles[styleItalic] = textStyle{"I", body, body * 1.2}
	d.styles[styleRegular] = textStyle{"", body, body * 1.2}

	if cfg.FontFile != "" {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(ttfFamily, style, cfg.FontFile)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("loading font %s: %w", cfg.FontFile, err)
		}
		d.family = ttfFamily
		d.tr = func(s string) string { return s }
	} else {
		d.family = coreFamily
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	return d, nil
}

// measure returns the width of s in the given style.
func (d *document) measure(st textStyle) layout.Measure {
	return func(s string) float64 {
		d.pdf.SetFont(d.family, st.font, st.size)
		return d.pdf.GetStringWidth(d.tr(s))
	}
}

// blocks wraps the heading and each non-empty field into text blocks.
func (d *document) blocks(j types.Journalist) []layout.TextBlock {
	width := d.page.ContentWidth()
	block := func(style int, text string) layout.TextBlock {
		st := d.styles[style]
		return layout.TextBlock{
			Lines:      layout.Wrap(text, width, d.measure(st)),
			LineHeight: st.lineHeight,
			Style:      style,
		}
	}

	out := []layout.TextBlock{block(styleHeading, j.Name)}
	for _, f := range j.Fields() {
		style := styleRegular
		switch f.Kind {
		case types.FieldDate:
			style = styleDate
		case types.FieldAffiliation, types.FieldCircumstances:
			style = styleItalic
		}
		if b := block(style, f.Value); len(b.Lines) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// register embeds a photo and returns its image name. A photo fpdf rejects
// is reported as an error and leaves the document usable.
func (d *document) register(p *photo) (string, error) {
	d.images++
	name := fmt.Sprintf("photo-%d", d.images)
	d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(p.data))
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return "", err
	}
	return name, nil
}

// addPage draws one record. imageName is empty for a text-only page.
func (d *document) addPage(j types.Journalist, imageName string, p *photo) layout.Plan {
	d.pdf.AddPage()

	plan := layout.PlanPage(d.page, imageName != "", d.blocks(j))
	if plan.HasImage {
		r := layout.Fit(plan.ImageBox, float64(p.width), float64(p.height))
		d.pdf.ImageOptions(imageName, r.X, r.Y, r.W, r.H, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	}

	y := plan.TextTop
	width := d.page.ContentWidth()
	for _, b := range plan.Blocks {
		st := d.styles[b.Style]
		d.pdf.SetFont(d.family, st.font, st.size)
		for _, line := range b.Lines {
			d.pdf.SetXY(d.page.Margin, y)
			d.pdf.CellFormat(width, b.LineHeight, d.tr(line), "", 0, "CM", false, 0, "")
			y += b.LineHeight
		}
	}
	return plan
}
