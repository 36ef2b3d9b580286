package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat indicates the uploaded file's extension is not one
// the pipeline knows how to parse.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one parsed input row, mapping column name to cell value. Columns
// missing from a row are present with an empty value, so lookups never
// have to distinguish absent keys from empty cells.
type Row map[string]string

// Get returns the trimmed value for the given column, or "" when the
// column is empty or absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// ParseFile reads the file at path into ordered rows. The format is
// chosen by the extension of the *original* filename, not the temp file
// path: uploads are spooled under random names.
func ParseFile(path, originalName string) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(originalName)); ext {
	case ".csv":
		return parseCSV(path)
	case ".xlsx", ".xls":
		return parseWorkbook(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	// Ragged rows are normalized against the header below.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		rows = append(rows, rowFromRecord(header, record))
	}

	return rows, nil
}

func parseWorkbook(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	// First sheet only, matching the csv single-table shape.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, rowFromRecord(header, record))
	}

	return rows, nil
}

func rowFromRecord(header, record []string) Row {
	row := make(Row, len(header))
	for i, column := range header {
		if column == "" {
			continue
		}
		if i < len(record) {
			row[column] = record[i]
		} else {
			row[column] = ""
		}
	}
	return row
}
