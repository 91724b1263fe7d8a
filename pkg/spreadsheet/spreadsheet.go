// Package spreadsheet is the input boundary of the import pipeline: it
// turns uploaded tabular files into ordered field-map rows. The pipeline
// core never touches file bytes.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
)

// Read parses an uploaded file by extension: .xlsx/.xlsm via excelize,
// anything else as CSV.
func Read(filename string, r io.Reader) ([]importer.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return ReadCSV(r)
	}
}

// ReadCSV reads a CSV file whose first record is the header. Short records
// are tolerated; missing cells become empty fields.
func ReadCSV(r io.Reader) ([]importer.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []importer.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rows = append(rows, toRow(header, record))
	}
	return rows, nil
}

// ReadXLSX reads the first sheet of an XLSX workbook, first row as header.
func ReadXLSX(r io.Reader) ([]importer.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := records[0]
	rows := make([]importer.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, toRow(header, record))
	}
	return rows, nil
}

func toRow(header, record []string) importer.Row {
	row := make(importer.Row, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if i < len(record) {
			row[col] = record[i]
		} else {
			row[col] = ""
		}
	}
	return row
}
