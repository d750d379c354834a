package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"zmean/internal/testkit"
)

// samplegen writes a deterministic Gaussian sample column to xlsx or csv,
// giving the ingest command a first-party fixture source.
func main() {
	out := flag.String("out", "iq_scores.xlsx", "output file path")
	rows := flag.Int("rows", 40, "number of sample rows")
	mean := flag.Float64("mean", 103, "population mean of the generated sample")
	sd := flag.Float64("sd", 16, "population standard deviation of the generated sample")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	column := flag.String("column", "iq_score", "column header for the sample values")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}
	if *sd <= 0 {
		fmt.Fprintln(os.Stderr, "sd must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = "xlsx"
		}
	}

	values := testkit.GenerateNormal(*seed, *rows, *mean, *sd)

	var err error
	switch fmtName {
	case "csv":
		err = writeCSV(*out, *column, values)
	case "xlsx":
		err = writeXLSX(*out, *column, values)
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error writing sample:", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d rows to %s (seed %d, mean %.2f, sd %.2f)\n", *rows, *out, *seed, *mean, *sd)
}

func writeCSV(path, column string, values []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"id", column}); err != nil {
		return err
	}
	for i, v := range values {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(v, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path, column string, values []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, header := range []string{"id", column} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Sheet1", cell, header); err != nil {
			return err
		}
	}

	for rowIdx, v := range values {
		idCell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, rowIdx+2)
		if err := f.SetCellValue("Sheet1", idCell, rowIdx+1); err != nil {
			return err
		}
		if err := f.SetCellValue("Sheet1", valueCell, v); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
