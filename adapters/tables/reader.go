package tables

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"alre/domain/frame"
	"alre/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Supported table file types
const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
)

// DefaultSheet is read from workbooks and written to single-table workbooks
const DefaultSheet = "Sheet1"

// FileType returns csv or xlsx for a path, or "" when unsupported
func FileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return TypeCSV
	case ".xlsx":
		return TypeXLSX
	default:
		return ""
	}
}

// ReadFile reads one result table. The first column is the row index and its
// header names the index; the remaining headers are column labels.
func ReadFile(path string) (*frame.Frame, error) {
	var rows [][]string
	var err error
	switch FileType(path) {
	case TypeCSV:
		rows, err = readCSVRows(path)
	case TypeXLSX:
		rows, err = readExcelRows(path)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported table file %s", path), nil)
	}
	if err != nil {
		return nil, err
	}
	fr, err := parseRows(rows)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("malformed table %s", path), err)
	}
	return fr, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError("failed to read CSV file "+path, err)
	}
	return rows, nil
}

// readExcelRows reads Sheet1, falling back to the first sheet in the workbook
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := DefaultSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets: "+path, nil)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", sheet), err)
	}
	return rows, nil
}

// parseRows converts raw string rows into a frame
func parseRows(rows [][]string) (*frame.Frame, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("table must have at least a header row and one data row")
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("table must have an index column and at least one value column")
	}
	indexName := strings.TrimSpace(header[0])
	columns := make([]string, len(header)-1)
	for j, h := range header[1:] {
		columns[j] = strings.TrimSpace(h)
	}

	index := make([]float64, 0, len(rows)-1)
	values := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+2, len(row), len(header))
		}
		idx, err := parseCell(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d index: %w", i+2, err)
		}
		vals := make([]float64, len(columns))
		for j, cell := range row[1:] {
			if vals[j], err = parseCell(cell); err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+2, columns[j], err)
			}
		}
		index = append(index, idx)
		values = append(values, vals)
	}

	fr, err := frame.FromRows(index, columns, values)
	if err != nil {
		return nil, err
	}
	if indexName != "" {
		fr.IndexName = indexName
	}
	return fr, nil
}

func parseCell(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
