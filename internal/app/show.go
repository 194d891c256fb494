package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"fxreport/internal/config"
	"fxreport/internal/series"
	"fxreport/internal/stats"
)

// Show prints a previously written CSV and the statistics derived from it.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	path := config.ResolvePath(opts.CSVPath, a.Config.Output.CSVPath)

	data, err := series.ReadCSVFile(path)
	if err != nil {
		return err
	}

	if err := printRates(a.Stdout, data); err != nil {
		return err
	}

	summary, err := stats.Summarize(data, a.Config.Pipeline.Window)
	if err != nil {
		a.Logger.Warn().Err(err).Str("csv", path).Msg("statistics unavailable")
		return nil
	}

	fmt.Fprintln(a.Stdout)
	return printSummary(a.Stdout, summary)
}

func printRates(out io.Writer, data *series.Series) error {
	codes := data.Currencies()
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	header := []string{"Date"}
	for _, code := range codes {
		header = append(header, strings.ToUpper(code))
	}
	fmt.Fprintln(writer, strings.Join(header, "\t"))

	columns := make([][]decimal.Decimal, len(codes))
	for i, code := range codes {
		columns[i], _ = data.Rates(code)
	}

	for row, date := range data.Dates() {
		cells := []string{date.Format(series.DateLayout)}
		for _, col := range columns {
			cells = append(cells, col[row].String())
		}
		fmt.Fprintln(writer, strings.Join(cells, "\t"))
	}

	return writer.Flush()
}

func printSummary(out io.Writer, summary stats.Summary) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Currency\tChange%%\tStdDev\tMA(%d)\n", summary.Window)

	for _, code := range summary.Currencies {
		averages := make([]string, 0, len(summary.MovingAverage[code]))
		for _, v := range summary.MovingAverage[code] {
			averages = append(averages, formatDecimal(v, 2))
		}
		ma := strings.Join(averages, " ")
		if ma == "" {
			ma = "-"
		}

		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\n",
			strings.ToUpper(code),
			formatDecimal(summary.RateOfChange[code], 3),
			strconv.FormatFloat(summary.StandardDeviation[code], 'f', 4, 64),
			ma,
		)
	}

	return writer.Flush()
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
