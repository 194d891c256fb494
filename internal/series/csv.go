package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

const dateColumn = "date"

// WriteCSV writes the header row followed by one row per date.
func WriteCSV(w io.Writer, s *Series) error {
	if s == nil {
		return errors.New("series is nil")
	}
	// New already guarantees this; re-check so a zero Series cannot slip through.
	for _, code := range s.currencies {
		if got := len(s.rates[code]); got != len(s.dates) {
			return &MisalignedSeriesError{Currency: code, Want: len(s.dates), Got: got}
		}
	}

	writer := csv.NewWriter(w)

	header := append([]string{dateColumn}, s.currencies...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, date := range s.dates {
		record := make([]string, 0, len(s.currencies)+1)
		record = append(record, date.Format(DateLayout))
		for _, code := range s.currencies {
			record = append(record, s.rates[code][i].String())
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile creates (or truncates) path and writes the series to it.
func WriteCSVFile(path string, s *Series) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, s); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// ReadCSV parses a document produced by WriteCSV.
func ReadCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || header[0] != dateColumn {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	currencies := header[1:]
	rates := make(map[string][]decimal.Decimal, len(currencies))
	for _, code := range currencies {
		rates[code] = nil
	}
	var dates []time.Time

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse(DateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse date: %w", line, err)
		}
		dates = append(dates, date)

		for i, code := range currencies {
			rate, err := decimal.NewFromString(record[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %s rate: %w", line, code, err)
			}
			rates[code] = append(rates[code], rate)
		}
	}

	if len(dates) == 0 {
		return nil, errors.New("csv has no data rows")
	}
	return New(dates, currencies, rates)
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
