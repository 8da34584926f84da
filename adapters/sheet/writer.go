package sheet

import (
	"fmt"
	"log"
	"strings"

	"tablecast/domain/table"
	"tablecast/internal/errors"

	"github.com/xuri/excelize/v2"
)

// sheetNameLimit is the workbook format's cap on sheet name length
const sheetNameLimit = 31

// Writer renders tables into a single xlsx workbook, one sheet per table,
// preserving input order
type Writer struct{}

// NewWriter creates a writer
func NewWriter() *Writer {
	return &Writer{}
}

// ContentType is the MIME type of the produced workbook
func (w *Writer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension is the suffix for suggested download filenames
func (w *Writer) FileExtension() string {
	return ".xlsx"
}

// Write renders the tables as workbook bytes. Sheet names are sanitized to
// the workbook rules and deduplicated; nil cells stay blank, float64 cells
// become number cells, strings stay strings.
func (w *Writer) Write(tables []table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := sheetName(t.Name, i, used)
		if i == 0 {
			// A new workbook starts with one default sheet; rename it
			// instead of leaving it dangling.
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, errors.WriteError(fmt.Sprintf("could not name sheet %q", name), err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, errors.WriteError(fmt.Sprintf("could not add sheet %q", name), err)
			}
		}
		if err := w.writeSheet(f, name, t); err != nil {
			return nil, errors.WriteError(fmt.Sprintf("could not render sheet %q", name), err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.WriteError("could not serialize workbook", err)
	}
	log.Printf("[SheetWriter] Workbook rendered (%d sheets, %d bytes)", len(tables), buf.Len())
	return buf.Bytes(), nil
}

func (w *Writer) writeSheet(f *excelize.File, name string, t table.Table) error {
	if len(t.Headers) > 0 {
		header := make([]interface{}, len(t.Headers))
		for j, h := range t.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, ref, &cells); err != nil {
			return err
		}
	}
	return nil
}

// sheetName makes a table name legal as a workbook sheet name: forbidden
// characters dropped, trimmed to the length cap, empty names defaulting to
// Sheet<N>, and collisions deduplicated with a numeric suffix.
func sheetName(name string, index int, used map[string]bool) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = fmt.Sprintf("Sheet%d", index+1)
	}
	cleaned = truncateRunes(cleaned, sheetNameLimit)

	candidate := cleaned
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		candidate = truncateRunes(cleaned, sheetNameLimit-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
