package arw

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-chroma/dsp/signal"
	"github.com/cwbudde/algo-chroma/internal/testutil"
)

const sample = "\"SampleName\"\t\"Channel\"\r\n" +
	"\"PS 12k run 3\"\r\n" +
	"0.5\t1.25\r\n" +
	"\r\n" +
	"1.0\t4\r\n" +
	"1.5\t2.5\t99\r\n"

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.Title != "PS 12k run 3" {
		t.Fatalf("Title = %q", c.Title)
	}
	testutil.RequireSliceNearlyEqual(t, c.Time, []float64{0.5, 1, 1.5}, 0)
	testutil.RequireSliceNearlyEqual(t, c.Intensity, []float64{1.25, 4, 2.5}, 0)
}

func TestReadMalformedRow(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line string
	}{
		{name: "text", in: "x\n\"t\"\n1\t2\n1.5\tabc\n", line: "line 4"},
		{name: "single field", in: "x\n\"t\"\n1\n", line: "line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformedRow) {
				t.Fatalf("err = %v, want ErrMalformedRow", err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Fatalf("err = %v, want mention of %s", err, tt.line)
			}
		})
	}
}

func TestReadMissingTitle(t *testing.T) {
	if _, err := Read(strings.NewReader("only one line\n")); !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("err = %v, want ErrMissingTitle", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := signal.NewGenerator()
	want := Chromatogram{Title: "synthetic", Time: g.Grid(), Intensity: g.Baseline(1, 0.5)}

	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Title != want.Title {
		t.Fatalf("Title = %q, want %q", got.Title, want.Title)
	}
	testutil.RequireSliceNearlyEqual(t, got.Time, want.Time, 0)
	testutil.RequireSliceNearlyEqual(t, got.Intensity, want.Intensity, 0)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.arw")
	want := Chromatogram{Title: "a", Time: []float64{1, 2}, Intensity: []float64{3, 4}}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Intensity, want.Intensity, 0)

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.arw")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWindow(t *testing.T) {
	c := Chromatogram{Title: "w", Time: []float64{1, 2, 3, 4}, Intensity: []float64{10, 20, 30, 40}}
	got, err := c.Window(2, 3)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Time, []float64{2, 3}, 0)
	testutil.RequireSliceNearlyEqual(t, got.Intensity, []float64{20, 30}, 0)

	if _, err := c.Window(5, 6); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("err = %v, want ErrEmptyWindow", err)
	}
}

func TestNormalized(t *testing.T) {
	c := Chromatogram{Title: "n", Time: []float64{1, 2, 3}, Intensity: []float64{2, 6, 4}}
	got, err := c.Normalized()
	if err != nil {
		t.Fatalf("Normalized: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Intensity, []float64{0, 1, 0.5}, 0)
	if c.Intensity[1] != 6 {
		t.Fatal("Normalized modified receiver")
	}

	flat := Chromatogram{Time: []float64{1, 2}, Intensity: []float64{3, 3}}
	if _, err := flat.Normalized(); !errors.Is(err, signal.ErrFlatSignal) {
		t.Fatalf("err = %v, want ErrFlatSignal", err)
	}
}
