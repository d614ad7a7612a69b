package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/algo-chroma/internal/testutil"
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/fit"
	"github.com/cwbudde/algo-chroma/peak/gauss"
)

func twoPeakResult(t *testing.T) *fit.Result {
	t.Helper()
	x, y, comps := testutil.TwoPeakChromatogram()
	initial := make(peak.Set, len(comps))
	for i, c := range comps {
		initial[i] = peak.Peak{Position: c.Position, Spread: c.Spread, Height: c.Height}
	}
	res, err := fit.Fit(x, y, initial)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return res
}

func TestSummarize(t *testing.T) {
	res := twoPeakResult(t)
	recs, err := Summarize(res)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	for i, r := range recs {
		m := res.Components[i].Metrics
		if r.Index != i+1 || r.Area != m.Area || r.Position != m.Position || r.Spread != m.Spread || r.Height != m.Height {
			t.Fatalf("record %d = %+v, metrics %+v", i, r, m)
		}
	}
	// Noiseless data: integrated areas match the closed form.
	testutil.RequireRelClose(t, "area 1", recs[0].Area, gauss.Area(10, 0.3), 1e-6)
	testutil.RequireRelClose(t, "area 2", recs[1].Area, gauss.Area(7, 0.4), 1e-6)
}

func TestSummarizeEmptyAndNil(t *testing.T) {
	x := testutil.Grid(0, 1, 0.1)
	res, err := fit.Fit(x, make([]float64, len(x)), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	recs, err := Summarize(res)
	if err != nil || len(recs) != 0 {
		t.Fatalf("recs=%v err=%v, want empty", recs, err)
	}
	if _, err := Summarize(nil); !errors.Is(err, ErrNilResult) {
		t.Fatalf("err = %v, want ErrNilResult", err)
	}
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	recs := []Record{{Index: 1, Area: 7.5, Position: 5, Spread: 2.25, Height: 10}}
	if err := WriteConsole(&buf, recs); err != nil {
		t.Fatalf("WriteConsole: %v", err)
	}
	want := "Peak 1 --> Area: 7.5, Position: 5, Standard Deviation: 2.25, Height: 10\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVSortedColumns(t *testing.T) {
	var buf bytes.Buffer
	recs := []Record{
		{Index: 1, Area: 7.5, Position: 5, Spread: 2.25, Height: 10},
		{Index: 2, Area: 0.125, Position: 6.5, Spread: 1, Height: 7},
	}
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "area,height,index,position,spread\n" +
		"7.5,10,1,5,2.25\n" +
		"0.125,7,2,6.5,1\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	recs, err := Summarize(twoPeakResult(t))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteParquet(&buf, recs); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	got, err := ReadParquet(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("len = %d, want %d", len(got), len(recs))
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], recs[i])
		}
	}
}

func TestWriteCurves(t *testing.T) {
	res := twoPeakResult(t)
	var buf bytes.Buffer
	if err := WriteCurves(&buf, res.Reconstruction); err != nil {
		t.Fatalf("WriteCurves: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got := strings.Join(rows[0], ","); got != "time,total,peak_1,peak_2" {
		t.Fatalf("header = %q", got)
	}
	if len(rows) != len(res.Reconstruction.X)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(res.Reconstruction.X)+1)
	}
}
