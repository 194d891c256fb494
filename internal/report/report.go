// Package report renders the run summary as a paginated PDF: three
// statistics tables followed by a line chart of the raw rates.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"fxreport/internal/series"
	"fxreport/internal/stats"
)

const (
	titleStandardDeviation = "Standard Deviation"
	titleMovingAverage     = "Moving Average"
	titleRateOfChange      = "Rate of Change (%)"
	titleChart             = "Rates by Date"

	chartImageName = "rates-chart"
	columnWidth    = 70.0
	rowHeight      = 8.0
)

// Data is everything the report shows. It carries no logic of its own.
type Data struct {
	Series  *series.Series
	Summary stats.Summary
}

// Options tune document and chart rendering.
type Options struct {
	Title        string
	BaseCurrency string
	ChartWidth   int
	ChartHeight  int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Exchange Rate Report"
	}
	if o.BaseCurrency == "" {
		o.BaseCurrency = "usd"
	}
	if o.ChartWidth <= 0 {
		o.ChartWidth = 1000
	}
	if o.ChartHeight <= 0 {
		o.ChartHeight = 700
	}
	return o
}

type document struct {
	pdf  *fpdf.Fpdf
	opts Options
	// sections records the layout order; fpdf compresses page streams, so
	// tests check ordering here rather than in the output bytes.
	sections []string
}

// Render writes the PDF report to w. Missing data produces a placeholder
// page instead of an error.
func Render(w io.Writer, data Data, opts Options) error {
	doc := build(data, opts)
	return doc.pdf.Output(w)
}

// WriteFile renders the report into path, replacing any previous file.
func WriteFile(path string, data Data, opts Options) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Render(file, data, opts); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return file.Close()
}

func build(data Data, opts Options) *document {
	opts = opts.withDefaults()

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	doc := &document{pdf: pdf, opts: opts}
	doc.heading(opts.Title, 18)

	if data.Series.Len() == 0 || len(data.Summary.Currencies) == 0 {
		doc.placeholder("No exchange rate data was available for this report.")
		return doc
	}

	codes := data.Summary.Currencies

	sdRows := make([][2]string, 0, len(codes))
	for _, code := range codes {
		sdRows = append(sdRows, [2]string{displayCode(code), strconv.FormatFloat(data.Summary.StandardDeviation[code], 'f', 6, 64)})
	}
	doc.table(titleStandardDeviation, [2]string{"Currency", "Standard Deviation"}, sdRows)

	var maRows [][2]string
	for _, code := range codes {
		for _, avg := range data.Summary.MovingAverage[code] {
			maRows = append(maRows, [2]string{displayCode(code), avg.StringFixed(2)})
		}
	}
	doc.table(titleMovingAverage, [2]string{"Currency", fmt.Sprintf("Moving Average (%d-day)", data.Summary.Window)}, maRows)

	rocRows := make([][2]string, 0, len(codes))
	for _, code := range codes {
		rocRows = append(rocRows, [2]string{displayCode(code), data.Summary.RateOfChange[code].StringFixed(4)})
	}
	doc.table(titleRateOfChange, [2]string{"Currency", "Rate of Change"}, rocRows)

	doc.chart(data.Series)
	return doc
}

func (d *document) heading(text string, size float64) {
	d.pdf.SetFont("Helvetica", "B", size)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, size*0.6, text, "", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

func (d *document) placeholder(text string) {
	d.sections = append(d.sections, "placeholder")
	d.pdf.SetFont("Helvetica", "I", 11)
	d.pdf.SetTextColor(90, 90, 90)
	d.pdf.MultiCell(0, 6, text, "", "L", false)
	d.pdf.Ln(6)
}

func (d *document) table(title string, header [2]string, rows [][2]string) {
	d.sections = append(d.sections, title)
	d.heading(title, 14)

	if len(rows) == 0 {
		d.placeholder("No values to display.")
		return
	}

	pageWidth, _ := d.pdf.GetPageSize()
	left := (pageWidth - 2*columnWidth) / 2

	// header: grey with white bold text
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(128, 128, 128)
	d.pdf.SetTextColor(245, 245, 245)
	d.pdf.SetX(left)
	for _, cell := range header {
		d.pdf.CellFormat(columnWidth, rowHeight+2, cell, "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.SetFillColor(245, 245, 220)
	d.pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		d.pdf.SetX(left)
		for _, cell := range row {
			d.pdf.CellFormat(columnWidth, rowHeight, cell, "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(8)
}

func (d *document) chart(s *series.Series) {
	d.sections = append(d.sections, titleChart)

	var buf bytes.Buffer
	if err := RenderChart(&buf, s, d.opts); err != nil {
		d.heading(titleChart, 14)
		d.placeholder("Chart unavailable: " + err.Error())
		return
	}

	left, _, right, bottom := d.pdf.GetMargins()
	pageWidth, pageHeight := d.pdf.GetPageSize()
	width := pageWidth - left - right
	height := width * float64(d.opts.ChartHeight) / float64(d.opts.ChartWidth)

	// keep the title on the same page as the image
	if d.pdf.GetY()+height+20 > pageHeight-bottom {
		d.pdf.AddPage()
	}
	d.heading(titleChart, 14)

	imageOpts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(chartImageName, imageOpts, &buf)
	d.pdf.ImageOptions(chartImageName, left, d.pdf.GetY(), width, height, true, imageOpts, 0, "")
}

func displayCode(code string) string {
	return strings.ToUpper(code)
}
