package sheet

import (
	"bytes"
	"encoding/csv"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tablecast/domain/table"
	"tablecast/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Workbook extensions handled by excelize
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltm": true,
	".xltx": true,
}

// Reader parses uploaded spreadsheet bytes into tables. The whole file is
// held in memory; nothing is streamed.
type Reader struct{}

// NewReader creates a reader
func NewReader() *Reader {
	return &Reader{}
}

// Parse decodes data into one Table per sheet, in file order. The format is
// picked by the filename extension: workbook formats go through excelize,
// .csv and .tsv are read as delimited text, and anything else tries the
// workbook path first and falls back to comma-delimited text. Failures are
// descriptive read errors, never swallowed.
func (r *Reader) Parse(data []byte, filename string) ([]table.Table, error) {
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		tables []table.Table
		err    error
	)
	switch {
	case workbookExtensions[ext]:
		tables, err = r.parseWorkbook(data, filename)
	case ext == ".csv":
		tables, err = r.parseDelimited(data, filename, ',')
	case ext == ".tsv":
		tables, err = r.parseDelimited(data, filename, '\t')
	default:
		// Unknown extension: a workbook signature is unambiguous, so try
		// that first and treat anything else as delimited text.
		tables, err = r.parseWorkbook(data, filename)
		if err != nil {
			tables, err = r.parseDelimited(data, filename, ',')
		}
	}
	if err != nil {
		log.Printf("[SheetReader] FAILED - %s: %v", filename, err)
		return nil, err
	}

	log.Printf("[SheetReader] Parsed %s in %.2fms (%d sheets)",
		filename, float64(time.Since(start).Nanoseconds())/1e6, len(tables))
	return tables, nil
}

func (r *Reader) parseWorkbook(data []byte, filename string) ([]table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ReadError(filename, err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	tables := make([]table.Table, 0, len(sheetNames))
	for _, sheetName := range sheetNames {
		t, err := r.readSheet(f, sheetName)
		if err != nil {
			return nil, errors.ReadError(filename, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// readSheet converts one worksheet. The first row becomes the headers (as
// strings); every later row keeps the file's native cell types: number
// cells come out float64, empty cells nil, everything else - dates, bools,
// formula results - keeps its formatted string. Ragged rows are preserved.
func (r *Reader) readSheet(f *excelize.File, sheetName string) (table.Table, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return table.Table{}, err
	}

	t := table.Table{Name: sheetName}
	if len(rows) == 0 {
		return t, nil
	}

	t.Headers = append([]string(nil), rows[0]...)
	t.Rows = make([]table.Row, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make(table.Row, len(rows[i]))
		for j, raw := range rows[i] {
			row[j] = r.workbookCell(f, sheetName, j, i, raw)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// workbookCell types one cell. excelize reports explicit string cells as
// shared/inline strings and leaves plain number cells untyped, so a cell is
// numeric when its type says so or when it is untyped and its raw value
// parses; a string cell that merely looks numeric stays a string.
func (r *Reader) workbookCell(f *excelize.File, sheetName string, col, row int, raw string) table.Value {
	if raw == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+2)
	if err != nil {
		return raw
	}
	ctype, err := f.GetCellType(sheetName, ref)
	if err != nil {
		return raw
	}
	if ctype == excelize.CellTypeNumber || ctype == excelize.CellTypeUnset {
		if n, ok := parseNumber(raw); ok {
			return n
		}
	}
	return raw
}

func (r *Reader) parseDelimited(data []byte, filename string, comma rune) ([]table.Table, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.ReadError(filename, err)
	}

	t := table.Table{Name: sheetNameForFile(filename)}
	if len(records) > 0 {
		t.Headers = append([]string(nil), records[0]...)
		t.Rows = make([]table.Row, 0, len(records)-1)
		for _, rec := range records[1:] {
			row := make(table.Row, len(rec))
			for j, cell := range rec {
				row[j] = delimitedCell(cell)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return []table.Table{t}, nil
}

// delimitedCell types one text cell by coercion: empty is nil, a parseable
// number is float64, everything else stays a string
func delimitedCell(cell string) table.Value {
	if cell == "" {
		return nil
	}
	if n, ok := parseNumber(cell); ok {
		return n
	}
	return cell
}

// parseNumber parses a finite decimal number. NaN and infinity tokens are
// kept as text; a spreadsheet cell saying "NaN" is a label, not a number.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// sheetNameForFile names the single table of a delimited file after the
// file stem, defaulting to Sheet1 when there is no usable stem
func sheetNameForFile(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "Sheet1"
	}
	return stem
}
