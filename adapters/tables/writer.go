package tables

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"alre/domain/frame"
	"alre/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named table in a workbook
type Sheet = frame.Named

// WriteFile writes one table, choosing CSV or XLSX from the extension
func WriteFile(path string, fr *frame.Frame) error {
	switch FileType(path) {
	case TypeCSV:
		return writeCSV(path, fr)
	case TypeXLSX:
		return WriteWorkbook(path, []Sheet{{Name: DefaultSheet, Frame: fr}})
	default:
		return errors.InvalidInput("unsupported table file "+path, nil)
	}
}

func records(fr *frame.Frame) [][]string {
	rows, cols := fr.Dims()
	out := make([][]string, 0, rows+1)
	out = append(out, append([]string{fr.IndexName}, fr.Columns...))
	for i := 0; i < rows; i++ {
		rec := make([]string, 0, cols+1)
		rec = append(rec, strconv.FormatFloat(fr.Index[i], 'g', -1, 64))
		for j := 0; j < cols; j++ {
			rec = append(rec, strconv.FormatFloat(fr.At(i, j), 'g', -1, 64))
		}
		out = append(out, rec)
	}
	return out
}

func writeCSV(path string, fr *frame.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.IOError("failed to create CSV file", err)
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(records(fr)); err != nil {
		file.Close()
		return errors.IOError("failed to write CSV file "+path, err)
	}
	return file.Close()
}

// WriteWorkbook writes each sheet's table with the index in column A
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.InvalidInput("workbook needs at least one sheet", nil)
	}
	f := excelize.NewFile()
	defer f.Close()

	for n, sheet := range sheets {
		switch {
		case n == 0 && sheet.Name != DefaultSheet:
			if err := f.SetSheetName(DefaultSheet, sheet.Name); err != nil {
				return errors.IOError("failed to name sheet "+sheet.Name, err)
			}
		case n > 0:
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return errors.IOError("failed to add sheet "+sheet.Name, err)
			}
		}

		rows, cols := sheet.Frame.Dims()
		header := make([]interface{}, 0, cols+1)
		header = append(header, sheet.Frame.IndexName)
		for _, c := range sheet.Frame.Columns {
			header = append(header, c)
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return errors.IOError("failed to write header", err)
		}
		for i := 0; i < rows; i++ {
			row := make([]interface{}, 0, cols+1)
			row = append(row, sheet.Frame.Index[i])
			for j := 0; j < cols; j++ {
				row = append(row, sheet.Frame.At(i, j))
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return errors.IOError("failed to address row", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return errors.IOError(fmt.Sprintf("failed to write row %d", i+2), err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError("failed to save workbook "+path, err)
	}
	return nil
}

// WriteResults lays out result sets as <dir>/<set>/<restart>.<ext>
func WriteResults(dir string, sets map[string][]*frame.Frame, fileType string) error {
	if fileType != TypeCSV && fileType != TypeXLSX {
		return errors.InvalidInput("unsupported table type "+fileType, nil)
	}
	for key, tables := range sets {
		setDir := filepath.Join(dir, key)
		if err := os.MkdirAll(setDir, 0o755); err != nil {
			return errors.IOError("failed to create "+setDir, err)
		}
		for k, fr := range tables {
			path := filepath.Join(setDir, fmt.Sprintf("%d.%s", k, fileType))
			if err := WriteFile(path, fr); err != nil {
				return err
			}
		}
	}
	return nil
}
