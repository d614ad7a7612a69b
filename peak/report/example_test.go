package report_test

import (
	"os"

	"github.com/cwbudde/algo-chroma/peak/report"
)

func ExampleWriteCSV() {
	recs := []report.Record{
		{Index: 1, Area: 7.52, Position: 5, Spread: 2.1, Height: 10},
	}
	if err := report.WriteCSV(os.Stdout, recs); err != nil {
		panic(err)
	}

	// Output:
	// area,height,index,position,spread
	// 7.52,10,1,5,2.1
}
