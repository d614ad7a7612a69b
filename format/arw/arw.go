// Package arw reads and writes exported chromatogram text files.
//
// The layout is line oriented: the first line is ignored, the second holds
// the quoted sample title, and each following non-blank line is a
// tab-separated time/intensity pair.
package arw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-chroma/dsp/signal"
)

var (
	// ErrMalformedRow is returned when a data row is not a numeric pair.
	ErrMalformedRow = errors.New("arw: malformed row")
	// ErrMissingTitle is returned when the input ends before the title line.
	ErrMissingTitle = errors.New("arw: missing title line")
	// ErrEmptyWindow is returned when no samples fall into a time window.
	ErrEmptyWindow = errors.New("arw: no samples in window")
)

// Chromatogram is one parsed trace.
type Chromatogram struct {
	Title     string
	Time      []float64
	Intensity []float64
}

// Len returns the number of samples.
func (c Chromatogram) Len() int {
	return len(c.Time)
}

// Window returns the samples with min <= time <= max.
func (c Chromatogram) Window(min, max float64) (Chromatogram, error) {
	out := Chromatogram{Title: c.Title}
	for i, t := range c.Time {
		if t >= min && t <= max {
			out.Time = append(out.Time, t)
			out.Intensity = append(out.Intensity, c.Intensity[i])
		}
	}
	if out.Len() == 0 {
		return Chromatogram{}, fmt.Errorf("%w: [%g, %g]", ErrEmptyWindow, min, max)
	}
	return out, nil
}

// Normalized returns a copy with intensities min-max scaled to [0, 1].
func (c Chromatogram) Normalized() (Chromatogram, error) {
	y, err := signal.MinMaxNormalize(c.Intensity)
	if err != nil {
		return Chromatogram{}, fmt.Errorf("arw: normalize %q: %w", c.Title, err)
	}
	return Chromatogram{
		Title:     c.Title,
		Time:      append([]float64(nil), c.Time...),
		Intensity: y,
	}, nil
}

// Read parses a chromatogram from r.
func Read(r io.Reader) (Chromatogram, error) {
	var c Chromatogram
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case line == 1:
			continue
		case line == 2:
			c.Title = strings.TrimSpace(strings.ReplaceAll(text, `"`, ""))
			continue
		case text == "":
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return Chromatogram{}, fmt.Errorf("%w: line %d: want 2 fields, got %d", ErrMalformedRow, line, len(fields))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return Chromatogram{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return Chromatogram{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		c.Time = append(c.Time, t)
		c.Intensity = append(c.Intensity, v)
	}
	if err := sc.Err(); err != nil {
		return Chromatogram{}, fmt.Errorf("arw: %w", err)
	}
	if line < 2 {
		return Chromatogram{}, ErrMissingTitle
	}
	return c, nil
}

// ReadFile parses the chromatogram stored at path.
func ReadFile(path string) (Chromatogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return Chromatogram{}, fmt.Errorf("arw: %w", err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return Chromatogram{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write serializes c in the layout Read accepts.
func Write(w io.Writer, c Chromatogram) error {
	if len(c.Time) != len(c.Intensity) {
		return fmt.Errorf("arw: %d times but %d intensities", len(c.Time), len(c.Intensity))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\"SampleName\"\n\"%s\"\n", strings.ReplaceAll(c.Title, `"`, ""))
	for i, t := range c.Time {
		bw.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatFloat(c.Intensity[i], 'g', -1, 64))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("arw: %w", err)
	}
	return nil
}

// WriteFile writes c to path, replacing any existing file.
func WriteFile(path string, c Chromatogram) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arw: %w", err)
	}
	if err := Write(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("arw: %w", err)
	}
	return nil
}
