package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is a decoded spreadsheet: row 0 is the header row
type Grid struct {
	Rows [][]string
}

// Header returns row 0, or nil for an empty grid
func (g Grid) Header() []string {
	if len(g.Rows) == 0 {
		return nil
	}
	return g.Rows[0]
}

// DataRows returns every row after the header
func (g Grid) DataRows() [][]string {
	if len(g.Rows) < 2 {
		return nil
	}
	return g.Rows[1:]
}

// Cell returns the text at (row, col); missing cells are empty
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// IsGridSource reports whether a file can be decoded into a Grid
func IsGridSource(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ParseGrid decodes CSV or XLSX bytes, dispatching on the file extension
func ParseGrid(name string, data []byte) (Grid, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx", ".xlsm":
		return parseXLSX(data)
	default:
		return Grid{}, fmt.Errorf("unsupported spreadsheet format: %s", name)
	}
}

func parseCSV(data []byte) (Grid, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Grid{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	return Grid{Rows: rows}, nil
}

func parseXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Grid{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Grid{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Grid{}, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return Grid{Rows: rows}, nil
}
