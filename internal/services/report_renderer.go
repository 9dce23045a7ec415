package services

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Renderer turns laid-out pages into a document.
type Renderer interface {
	Render(pages []ReportPage, w io.Writer) error
}

// PDFRenderer renders through pdfcpu's JSON page description.
type PDFRenderer struct {
	conf *model.Configuration
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{conf: model.NewDefaultConfiguration()}
}

type pdfFont struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Align string     `json:"align"`
	Font  pdfFont    `json:"font"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfLayout struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

func buildLayout(pages []ReportPage) pdfLayout {
	layout := pdfLayout{
		Paper:  "A4P",
		Origin: "UpperLeft",
		Pages:  make(map[string]pdfPage, len(pages)),
	}
	for _, p := range pages {
		texts := make([]pdfText, 0, len(p.Lines))
		for _, l := range p.Lines {
			if l.Text == "" {
				continue
			}
			texts = append(texts, pdfText{
				Value: l.Text,
				Pos:   [2]float64{round1(l.X), round1(l.Y)},
				Align: string(l.Style.Align),
				Font:  pdfFont{Name: l.Style.Font, Size: l.Style.Size, Color: l.Style.Color},
			})
		}
		layout.Pages[strconv.Itoa(p.Number)] = pdfPage{Content: pdfContent{Text: texts}}
	}
	return layout
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (r *PDFRenderer) Render(pages []ReportPage, w io.Writer) error {
	if len(pages) == 0 {
		return fmt.Errorf("nothing to render")
	}
	data, err := json.Marshal(buildLayout(pages))
	if err != nil {
		return fmt.Errorf("failed to encode page layout: %w", err)
	}
	if err := api.Create(nil, bytes.NewReader(data), w, r.conf); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
