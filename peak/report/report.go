// Package report turns fitted peaks into per-peak records and serializes
// them for people (console lines) and tools (CSV, Parquet).
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/cwbudde/algo-chroma/peak/fit"
)

// ErrNilResult is returned when there is no fit result to report.
var ErrNilResult = errors.New("report: nil fit result")

// Record summarizes one fitted peak using its recomputed metrics.
type Record struct {
	Index    int     `parquet:"index"` // 1-based, in peak order
	Area     float64 `parquet:"area"`
	Position float64 `parquet:"position"`
	Spread   float64 `parquet:"spread"`
	Height   float64 `parquet:"height"`
}

type attribute struct {
	name   string
	format func(Record) string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// attributes is sorted by name; CSV columns follow that order.
var attributes = func() []attribute {
	attrs := []attribute{
		{name: "index", format: func(r Record) string { return strconv.Itoa(r.Index) }},
		{name: "area", format: func(r Record) string { return formatFloat(r.Area) }},
		{name: "position", format: func(r Record) string { return formatFloat(r.Position) }},
		{name: "spread", format: func(r Record) string { return formatFloat(r.Spread) }},
		{name: "height", format: func(r Record) string { return formatFloat(r.Height) }},
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].name < attrs[j].name })
	return attrs
}()

// Header returns the CSV column names.
func Header() []string {
	out := make([]string, len(attributes))
	for i, a := range attributes {
		out[i] = a.name
	}
	return out
}

// Summarize returns one record per fitted peak, in peak order.
func Summarize(res *fit.Result) ([]Record, error) {
	if res == nil {
		return nil, ErrNilResult
	}
	out := make([]Record, len(res.Components))
	for i, c := range res.Components {
		out[i] = Record{
			Index:    i + 1,
			Area:     c.Metrics.Area,
			Position: c.Metrics.Position,
			Spread:   c.Metrics.Spread,
			Height:   c.Metrics.Height,
		}
	}
	return out, nil
}

// WriteConsole writes one human-readable line per record.
func WriteConsole(w io.Writer, recs []Record) error {
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "Peak %d --> Area: %v, Position: %v, Standard Deviation: %v, Height: %v\n",
			r.Index, r.Area, r.Position, r.Spread, r.Height); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return nil
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	row := make([]string, len(attributes))
	for _, r := range recs {
		for i, a := range attributes {
			row[i] = a.format(r)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteParquet writes the records as a Parquet file.
func WriteParquet(w io.Writer, recs []Record) error {
	pw := parquet.NewGenericWriter[Record](w, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(recs); err != nil {
		return fmt.Errorf("report: parquet write: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("report: parquet close: %w", err)
	}
	return nil
}

// ReadParquet reads records written by WriteParquet.
func ReadParquet(r io.ReaderAt) ([]Record, error) {
	gr := parquet.NewGenericReader[Record](r)
	defer gr.Close()

	var out []Record
	batch := make([]Record, 64)
	for {
		n, err := gr.Read(batch)
		out = append(out, batch[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("report: parquet read: %w", err)
		}
	}
	return out, nil
}

// WriteCurves writes the dense reconstruction as CSV with columns time,
// total and peak_1..peak_n, one row per grid point.
func WriteCurves(w io.Writer, rec fit.Reconstruction) error {
	cw := csv.NewWriter(w)
	header := []string{"time", "total"}
	for i := range rec.Components {
		header = append(header, "peak_"+strconv.Itoa(i+1))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	row := make([]string, len(header))
	for j, x := range rec.X {
		row[0] = formatFloat(x)
		row[1] = formatFloat(rec.Total[j])
		for i, c := range rec.Components {
			row[2+i] = formatFloat(c[j])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
