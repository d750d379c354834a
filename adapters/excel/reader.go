package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"zmean/domain/core"
	"zmean/ports"
)

// SampleData holds a parsed spreadsheet: one header row plus string cells
type SampleData struct {
	Headers []string
	Rows    [][]string
}

// DataReader handles reading Excel and CSV files. It implements
// SampleSourcePort so the ingestion flow never sees file formats.
type DataReader struct {
	filePath  string
	sheetName string
	fileType  string // "xlsx" or "csv"

	data *SampleData // cached after first read
}

// NewDataReader creates a reader for the given path, inferring the format
// from the extension. sheetName applies to xlsx files only; empty means
// Sheet1.
func NewDataReader(filePath, sheetName string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &DataReader{filePath: filePath, sheetName: sheetName, fileType: fileType}
}

// ReadData reads the file into structured form, caching the result
func (r *DataReader) ReadData() (*SampleData, error) {
	if r.data != nil {
		return r.data, nil
	}

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		data *SampleData
		err  error
	)
	switch r.fileType {
	case "csv":
		data, err = r.readCSVData()
	case "xlsx":
		data, err = r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	r.data = data
	return data, nil
}

func (r *DataReader) readExcelData() (*SampleData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheetName, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)",
		r.sheetName, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return buildSampleData(rows), nil
}

func (r *DataReader) readCSVData() (*SampleData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return buildSampleData(rows), nil
}

func buildSampleData(rows [][]string) *SampleData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &SampleData{Headers: headers, Rows: rows[1:]}
}

// Columns lists the header names available in the source
func (r *DataReader) Columns() ([]string, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return data.Headers, nil
}

// ReadColumn extracts one named numeric column. Blank cells and NA markers
// are skipped; any other unparseable cell is an error so a typo'd column
// cannot silently shrink the sample.
func (r *DataReader) ReadColumn(name string) ([]float64, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	colIdx := -1
	for i, header := range data.Headers {
		if strings.EqualFold(header, name) {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			core.ErrColumnNotFound, name, strings.Join(data.Headers, ", "))
	}

	values := make([]float64, 0, len(data.Rows))
	for rowIdx, row := range data.Rows {
		if colIdx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[colIdx])
		if cell == "" || isNAMarker(cell) {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: cannot parse %q as number", name, rowIdx+2, cell)
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: column %q has no numeric values", core.ErrInsufficientData, name)
	}
	return values, nil
}

func isNAMarker(cell string) bool {
	switch strings.ToUpper(cell) {
	case "NA", "N/A", "NAN", "NULL", "-":
		return true
	}
	return false
}

var _ ports.SampleSourcePort = (*DataReader)(nil)
