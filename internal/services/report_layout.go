package services

import (
	"strings"
)

// A4 portrait in PDF points, origin at the upper left.
const (
	pageWidth    = 595.0
	pageHeight   = 842.0
	marginLeft   = 50.0
	marginTop    = 40.0
	bodyBottom   = pageHeight - 70.0
	footerTop    = pageHeight - 45.0
	contentWidth = pageWidth - 2*marginLeft

	// average Helvetica glyph width as a fraction of the font size
	glyphWidth = 0.52
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

type TextStyle struct {
	Font  string
	Size  int
	Color string
	Align Align
}

var (
	styleLetterhead = TextStyle{Font: "Helvetica-Bold", Size: 16, Color: "#003366", Align: AlignCenter}
	styleLetterSub  = TextStyle{Font: "Helvetica", Size: 10, Color: "#000000", Align: AlignCenter}
	styleTitle      = TextStyle{Font: "Helvetica-Bold", Size: 14, Color: "#003366", Align: AlignCenter}
	styleHeading    = TextStyle{Font: "Helvetica-Bold", Size: 12, Color: "#003366", Align: AlignLeft}
	styleSubheading = TextStyle{Font: "Helvetica-Bold", Size: 10, Color: "#000000", Align: AlignLeft}
	styleBody       = TextStyle{Font: "Helvetica", Size: 10, Color: "#000000", Align: AlignLeft}
	styleDetail     = TextStyle{Font: "Helvetica", Size: 9, Color: "#000000", Align: AlignLeft}
	styleFine       = TextStyle{Font: "Helvetica-Oblique", Size: 8, Color: "#808080", Align: AlignLeft}
	styleFooter     = TextStyle{Font: "Helvetica-Oblique", Size: 8, Color: "#808080", Align: AlignCenter}
)

// ReportLine is one logical line before wrapping and placement.
type ReportLine struct {
	Text        string
	Style       TextStyle
	Indent      float64
	SpaceBefore float64
}

// PlacedLine is a wrapped line at its final page position.
type PlacedLine struct {
	Text  string
	X     float64
	Y     float64
	Style TextStyle
}

type ReportPage struct {
	Number int
	Lines  []PlacedLine
}

// Text returns the page's lines joined by newlines.
func (p ReportPage) Text() string {
	texts := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

func lineHeight(s TextStyle) float64 {
	return float64(s.Size) * 1.45
}

// wrapText breaks text on spaces so no line exceeds maxChars, unless a single
// word is longer.
func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	if maxChars <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) > maxChars {
			lines = append(lines, current)
			current = w
			continue
		}
		current += " " + w
	}
	return append(lines, current)
}

func maxCharsFor(style TextStyle, indent float64) int {
	return int((contentWidth - indent) / (float64(style.Size) * glyphWidth))
}

type pageBuilder struct {
	header []ReportLine
	footer func(page int) []ReportLine
	pages  []ReportPage
	page   *ReportPage
	y      float64
}

// paginate wraps and positions body lines, repeating header on every page and
// stamping each page with footer.
func paginate(header, body []ReportLine, footer func(page int) []ReportLine) []ReportPage {
	b := &pageBuilder{header: header, footer: footer}
	b.newPage()
	for _, line := range body {
		b.place(line, true)
	}
	b.finishPage()
	return b.pages
}

func (b *pageBuilder) newPage() {
	b.page = &ReportPage{Number: len(b.pages) + 1}
	b.y = marginTop
	for _, line := range b.header {
		b.place(line, false)
	}
}

func (b *pageBuilder) finishPage() {
	y := footerTop
	for _, line := range b.footer(b.page.Number) {
		b.page.Lines = append(b.page.Lines, position(line.Text, line, y))
		y += lineHeight(line.Style)
	}
	b.pages = append(b.pages, *b.page)
}

func (b *pageBuilder) place(line ReportLine, breakable bool) {
	b.y += line.SpaceBefore
	for _, text := range wrapText(line.Text, maxCharsFor(line.Style, line.Indent)) {
		h := lineHeight(line.Style)
		if breakable && b.y+h > bodyBottom {
			b.finishPage()
			b.newPage()
		}
		b.page.Lines = append(b.page.Lines, position(text, line, b.y))
		b.y += h
	}
}

func position(text string, line ReportLine, y float64) PlacedLine {
	x := marginLeft + line.Indent
	if line.Style.Align == AlignCenter {
		x = pageWidth / 2
	}
	return PlacedLine{Text: text, X: x, Y: y, Style: line.Style}
}
