package report

import (
	"errors"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"fxreport/internal/series"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to render")

// RenderChart draws every currency's raw rates against date as a PNG line chart.
func RenderChart(w io.Writer, s *series.Series, opts Options) error {
	opts = opts.withDefaults()
	if s.Len() == 0 || len(s.Currencies()) == 0 {
		return ErrNoData
	}
	if s.Len() < 2 {
		return errors.New("at least two dates are required to draw a line")
	}

	dates := s.Dates()
	plotted := make([]chart.Series, 0, len(s.Currencies()))
	for _, code := range s.Currencies() {
		values, _ := s.Floats(code)
		plotted = append(plotted, chart.TimeSeries{
			Name:    strings.ToUpper(code) + " vs Date",
			XValues: dates,
			YValues: values,
			Style: chart.Style{
				StrokeWidth: 2,
				DotWidth:    3,
			},
		})
	}

	rateFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  opts.ChartWidth,
		Height: opts.ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
			Style: chart.Style{
				TextRotationDegrees: 45.0,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: chart.ColorAlternateGray,
				StrokeWidth: 1.0,
			},
		},
		YAxis: chart.YAxis{
			Name:           "Rate (per " + strings.ToUpper(opts.BaseCurrency) + ")",
			ValueFormatter: rateFormatter,
			GridMajorStyle: chart.Style{
				StrokeColor: chart.ColorAlternateGray,
				StrokeWidth: 1.0,
			},
		},
		Series: plotted,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
